package domain

import (
	"time"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPublished ProjectStatus = "published"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectDraft || s == ProjectPublished
}

type Project struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:100;not null" json:"title"`
	UserID      int64         `gorm:"not null;index" json:"-"`
	User        *User         `gorm:"foreignKey:UserID" json:"-"`
	Description string        `gorm:"size:1024" json:"description"`
	Status      ProjectStatus `gorm:"size:16;not null;default:draft;index" json:"status"`
	Hits        int64         `gorm:"not null;default:0" json:"hits"`
	Copyright   string        `gorm:"size:100" json:"copyright"`
	Published   *time.Time    `gorm:"index" json:"published"`
	CreatedAt   time.Time     `json:"created"`
	UpdatedAt   time.Time     `json:"modified"`

	Visualizes []Visualize `gorm:"-" json:"-"`
}

func (Project) TableName() string { return "projects" }

// MarkPublished stamps the first publication time. Once set it never changes.
func (p *Project) MarkPublished(now time.Time) bool {
	if p.Status != ProjectPublished || p.Published != nil {
		return false
	}
	t := now
	p.Published = &t
	return true
}

func (p *Project) OwnedBy(userID int64) bool {
	return p.UserID == userID
}

func (p *Project) AuditKind() string { return "project" }
func (p *Project) AuditID() int64    { return p.ID }
func (p *Project) String() string    { return p.Title }
