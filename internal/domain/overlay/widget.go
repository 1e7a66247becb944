package overlay

import (
	"time"

	"gorm.io/datatypes"
)

type Widget struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WidgetClass string `gorm:"column:widget_class;not null;index" json:"widget_class"`
	Name        string `gorm:"column:name;not null" json:"name"`

	// Free-form per widget class; each class owns the semantics of its keys.
	Parameters datatypes.JSON `gorm:"column:widget_parameters;type:jsonb" json:"widget_parameters"`

	Elements   []Element   `gorm:"foreignKey:WidgetID;constraint:OnDelete:CASCADE" json:"elements,omitempty"`
	Dashboards []Dashboard `gorm:"many2many:dashboard_widget;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Widget) TableName() string { return "widget" }

type Dashboard struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string `gorm:"column:description" json:"description,omitempty"`
	IsActive    bool   `gorm:"column:is_active;not null;index" json:"is_active"`

	Widgets []Widget `gorm:"many2many:dashboard_widget;constraint:OnDelete:CASCADE" json:"widgets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Dashboard) TableName() string { return "dashboard" }
