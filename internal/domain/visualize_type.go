package domain

import (
	"time"

	"gorm.io/datatypes"
)

// VisualizeType is a catalog entry describing a kind of chart.
type VisualizeType struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Alias        string         `gorm:"size:100;uniqueIndex;not null" json:"alias"`
	Image        string         `gorm:"size:255" json:"-"`
	SampleImage  string         `gorm:"size:255" json:"-"`
	SettingImage string         `gorm:"size:255" json:"-"`
	Attribute    datatypes.JSON `json:"attribute"`
	Description  string         `gorm:"type:text" json:"description"`
	CreatedAt    time.Time      `json:"created"`
	UpdatedAt    time.Time      `json:"modified"`
}

func (VisualizeType) TableName() string { return "visualize_types" }

// Images returns the three image paths in a fixed order: icon, sample, setting.
func (t *VisualizeType) Images() [3]string {
	return [3]string{t.Image, t.SampleImage, t.SettingImage}
}

func (t *VisualizeType) AuditKind() string { return "visualize type" }
func (t *VisualizeType) AuditID() int64    { return t.ID }
func (t *VisualizeType) String() string    { return t.Title }
