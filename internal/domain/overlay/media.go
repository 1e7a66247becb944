package overlay

import (
	"path"
	"strings"
	"time"
)

type Media struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Filename         string `gorm:"column:filename;not null;uniqueIndex" json:"filename"`
	OriginalFilename string `gorm:"column:original_filename" json:"original_filename,omitempty"`
	MimeType         string `gorm:"column:mime_type;not null;index" json:"mime_type"`
	SizeBytes        int64  `gorm:"column:file_size;not null" json:"file_size"`
	Width            *int   `gorm:"column:width" json:"width,omitempty"`
	Height           *int   `gorm:"column:height" json:"height,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Media) TableName() string { return "media" }

// Kind is the top-level MIME family: image, video or audio.
func (m *Media) Kind() string {
	if m == nil {
		return ""
	}
	kind, _, _ := strings.Cut(m.MimeType, "/")
	return kind
}

// URL is the public path the overlay client fetches the file from.
func (m *Media) URL() string {
	if m == nil || m.Filename == "" {
		return ""
	}
	return path.Join("/uploads", m.Filename)
}

// ElementAsset binds one media row to an element under a named role.
type ElementAsset struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ElementID uint   `gorm:"not null;uniqueIndex:idx_element_asset_role" json:"element_id"`
	MediaID   uint   `gorm:"not null;index" json:"media_id"`
	Media     *Media `gorm:"constraint:OnDelete:RESTRICT;foreignKey:MediaID;references:ID" json:"media,omitempty"`
	Role      string `gorm:"column:role;not null;default:default;uniqueIndex:idx_element_asset_role" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

func (ElementAsset) TableName() string { return "element_asset" }
