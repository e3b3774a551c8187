// Package audit keeps a history of admin-visible changes to stored entities.
package audit

import "time"

type Action string

const (
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	return a == ActionAdd || a == ActionChange || a == ActionDelete
}

type Entry struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	ContentType string    `gorm:"size:100;not null;index" json:"content_type"`
	ObjectID    int64     `gorm:"not null;index" json:"object_id"`
	ObjectRepr  string    `gorm:"size:200" json:"object_repr"`
	Action      Action    `gorm:"size:16;not null" json:"action"`
	Message     string    `gorm:"type:text" json:"message"`
	ActionTime  time.Time `gorm:"not null;index" json:"action_time"`
}

func (Entry) TableName() string { return "audit_entries" }

// Subject is an entity whose changes are recorded.
type Subject interface {
	AuditKind() string
	AuditID() int64
	String() string
}
