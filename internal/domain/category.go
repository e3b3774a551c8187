package domain

import (
	"fmt"
	"time"
)

// CategoryIcon is an admin-managed icon image used by categories.
type CategoryIcon struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Image     string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

func (CategoryIcon) TableName() string { return "category_icons" }

func (i *CategoryIcon) AuditKind() string { return "category icon" }
func (i *CategoryIcon) AuditID() int64    { return i.ID }
func (i *CategoryIcon) String() string    { return fmt.Sprintf("CategoryIcon - %d", i.ID) }

type Category struct {
	ID             int64         `gorm:"primaryKey" json:"id"`
	Title          string        `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Description    string        `gorm:"size:1024" json:"description"`
	Code           string        `gorm:"size:6" json:"code"`
	CategoryIconID int64         `gorm:"not null;index" json:"category_icon"`
	CategoryIcon   *CategoryIcon `gorm:"foreignKey:CategoryIconID" json:"-"`
	CreatedAt      time.Time     `json:"created"`
	UpdatedAt      time.Time     `json:"modified"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) AuditKind() string { return "category" }
func (c *Category) AuditID() int64    { return c.ID }
func (c *Category) String() string    { return fmt.Sprintf("Category - %d", c.ID) }
