package domain

import (
	"fmt"
	"time"
)

type ProfileImage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Image     string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

func (ProfileImage) TableName() string { return "profile_images" }

func (p *ProfileImage) AuditKind() string { return "profile image" }
func (p *ProfileImage) AuditID() int64    { return p.ID }
func (p *ProfileImage) String() string    { return fmt.Sprintf("ProfileImage - %d", p.ID) }
