package overlay

import (
	"time"

	"gorm.io/datatypes"
)

type ElementType string

const (
	ElementImage     ElementType = "image"
	ElementVideo     ElementType = "video"
	ElementAudio     ElementType = "audio"
	ElementText      ElementType = "text"
	ElementTimer     ElementType = "timer"
	ElementCounter   ElementType = "counter"
	ElementCard      ElementType = "card"
	ElementCanvas    ElementType = "canvas"
	ElementAnimation ElementType = "animation"
)

var elementTypes = []ElementType{
	ElementImage, ElementVideo, ElementAudio, ElementText, ElementTimer,
	ElementCounter, ElementCard, ElementCanvas, ElementAnimation,
}

// ElementTypes lists the closed element-type catalog.
func ElementTypes() []ElementType {
	out := make([]ElementType, len(elementTypes))
	copy(out, elementTypes)
	return out
}

func (t ElementType) Valid() bool {
	for _, et := range elementTypes {
		if et == t {
			return true
		}
	}
	return false
}

type Element struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WidgetID uint `gorm:"not null;uniqueIndex:idx_element_widget_name" json:"widget_id"`

	Name        string      `gorm:"column:name;not null;uniqueIndex:idx_element_widget_name" json:"name"`
	ElementType ElementType `gorm:"column:element_type;not null;index" json:"element_type"`
	Description string      `gorm:"column:description" json:"description,omitempty"`

	Enabled bool `gorm:"column:enabled;not null" json:"enabled"`
	Visible bool `gorm:"column:visible;not null" json:"visible"`
	Playing bool `gorm:"column:playing;not null" json:"playing"`

	Properties datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`
	Behavior   datatypes.JSON `gorm:"column:behavior;type:jsonb" json:"behavior"`

	MediaAssets []ElementAsset `gorm:"foreignKey:ElementID;constraint:OnDelete:CASCADE" json:"media_assets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Element) TableName() string { return "element" }

// MediaForRole returns the media bound under role, or nil.
func (e *Element) MediaForRole(role string) *Media {
	if e == nil {
		return nil
	}
	for i := range e.MediaAssets {
		if e.MediaAssets[i].Role == role {
			return e.MediaAssets[i].Media
		}
	}
	return nil
}
