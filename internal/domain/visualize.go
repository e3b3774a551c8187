package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type DataType string

const (
	DataUpload DataType = "upload"
	DataQuery  DataType = "query"
	DataAPI    DataType = "api"
	DataDB     DataType = "db"
)

func (t DataType) Valid() bool {
	switch t {
	case DataUpload, DataQuery, DataAPI, DataDB:
		return true
	}
	return false
}

// Visualize is one chart of a project. Order is its display position and
// the key used to match stored rows against a submitted project.
type Visualize struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	ProjectID       int64          `gorm:"not null;index" json:"-"`
	Order           int            `gorm:"column:display_order;not null;default:0" json:"order"`
	VisualizeTypeID int64          `gorm:"not null;index" json:"-"`
	VisualizeType   *VisualizeType `gorm:"foreignKey:VisualizeTypeID" json:"-"`
	Attribute       datatypes.JSON `json:"attribute"`
	CreatedAt       time.Time      `json:"created"`
	UpdatedAt       time.Time      `json:"modified"`

	Data      *Data      `gorm:"-" json:"-"`
	Filter    *Filter    `gorm:"-" json:"-"`
	Thumbnail *Thumbnail `gorm:"-" json:"-"`
}

func (Visualize) TableName() string { return "visualizes" }

// Data shares its primary key with the owning Visualize.
type Data struct {
	ID            int64          `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Type          DataType       `gorm:"size:16;not null" json:"type"`
	VisualizeData datatypes.JSON `gorm:"not null" json:"visualize_data"`
	OriginData    datatypes.JSON `json:"-"`
	Metadata      datatypes.JSON `json:"metadata"`
	CreatedAt     time.Time      `json:"-"`
	UpdatedAt     time.Time      `json:"-"`
}

func (Data) TableName() string { return "visualize_data" }

type Filter struct {
	ID        int64          `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Content   datatypes.JSON `json:"content"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}

func (Filter) TableName() string { return "visualize_filters" }

type Thumbnail struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ImagePath string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Thumbnail) TableName() string { return "thumbnails" }

func (t *Thumbnail) String() string { return fmt.Sprintf("%d", t.ID) }
