package project

import (
	"encoding/json"

	"daisy/internal/domain"
)

type CreateRequest struct {
	Title       string               `json:"title" validate:"required,max=100"`
	User        string               `json:"user" validate:"omitempty,email"`
	Description string               `json:"description" validate:"max=1024"`
	Status      domain.ProjectStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Copyright   string               `json:"copyright" validate:"max=100"`
	Visualize   []VisualizeInput     `json:"visualize" validate:"dive"`
}

// UpdateRequest is partial: nil fields keep their stored value. A nil
// Visualize leaves the children alone; an empty list removes them all.
type UpdateRequest struct {
	Title       *string               `json:"title" validate:"omitempty,min=1,max=100"`
	User        *string               `json:"user" validate:"omitempty,email"`
	Description *string               `json:"description" validate:"omitempty,max=1024"`
	Status      *domain.ProjectStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Copyright   *string               `json:"copyright" validate:"omitempty,max=100"`
	Visualize   *[]VisualizeInput     `json:"visualize" validate:"omitempty,dive"`
}

type VisualizeInput struct {
	Order         int             `json:"order" validate:"gte=0"`
	VisualizeType int64           `json:"visualize_type" validate:"required,gt=0"`
	Attribute     json.RawMessage `json:"attribute"`
	Data          *DataInput      `json:"data" validate:"required"`
	Filter        *FilterInput    `json:"filter"`
	Thumbnail     *ThumbnailInput `json:"thumbnail"`
}

type DataInput struct {
	Type          domain.DataType `json:"type" validate:"required,oneof=upload query api db"`
	VisualizeData json.RawMessage `json:"visualize_data"`
	OriginData    json.RawMessage `json:"origin_data"`
	Metadata      json.RawMessage `json:"metadata"`
}

type FilterInput struct {
	Content json.RawMessage `json:"content"`
}

// ThumbnailInput carries a data URI. An empty image clears the thumbnail.
type ThumbnailInput struct {
	Image string `json:"image"`
}

// Actor is the authenticated caller of a write.
type Actor struct {
	UserID int64
	Staff  bool
}

func (a Actor) canEdit(p *domain.Project) bool {
	return a.Staff || p.OwnedBy(a.UserID)
}

// Changes lists the visualize orders touched by a reconciliation.
type Changes struct {
	Created []int `json:"created"`
	Updated []int `json:"updated"`
	Deleted []int `json:"deleted"`
}
