package project

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"daisy/internal/domain"
)

type ProjectResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	User        string               `json:"user"`
	Description string               `json:"description"`
	Visualize   []VisualizeResponse  `json:"visualize"`
	Status      domain.ProjectStatus `json:"status"`
	Hits        int64                `json:"hits"`
	Copyright   string               `json:"copyright"`
	Published   *time.Time           `json:"published"`
}

type VisualizeResponse struct {
	ID        int64              `json:"id"`
	Order     int                `json:"order"`
	Data      *DataResponse      `json:"data"`
	Filter    *FilterResponse    `json:"filter"`
	Thumbnail *ThumbnailResponse `json:"thumbnail"`
	Type      *TypeResponse      `json:"type"`
	Attribute json.RawMessage    `json:"attribute"`
}

// DataResponse has no origin_data field: the raw source document is
// write-only.
type DataResponse struct {
	Type          domain.DataType `json:"type"`
	VisualizeData json.RawMessage `json:"visualize_data"`
	Metadata      json.RawMessage `json:"metadata"`
}

type FilterResponse struct {
	Content json.RawMessage `json:"content"`
}

type ThumbnailResponse struct {
	Image *string `json:"image"`
}

type TypeResponse struct {
	Title     string          `json:"title"`
	Alias     string          `json:"alias"`
	Attribute json.RawMessage `json:"attribute"`
}

// ListItem is the compact list representation.
type ListItem struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	User        string               `json:"user"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Hits        int64                `json:"hits"`
	Copyright   string               `json:"copyright"`
	Published   *time.Time           `json:"published"`
	Visualize   []ListVisualize      `json:"visualize"`
}

type ListVisualize struct {
	ID        int64              `json:"id"`
	Thumbnail *ThumbnailResponse `json:"thumbnail"`
}

func rawJSON(doc datatypes.JSON) json.RawMessage {
	if len(doc) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(doc)
}

func ownerEmail(p *domain.Project) string {
	if p.User == nil {
		return ""
	}
	return p.User.Email
}

func (s *Service) thumbnail(t *domain.Thumbnail) *ThumbnailResponse {
	if t == nil {
		return nil
	}
	resp := &ThumbnailResponse{}
	if t.ImagePath != "" {
		url := s.files.URL(t.ImagePath)
		resp.Image = &url
	}
	return resp
}

func (s *Service) toResponse(p *domain.Project) ProjectResponse {
	out := ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		User:        ownerEmail(p),
		Description: p.Description,
		Visualize:   make([]VisualizeResponse, 0, len(p.Visualizes)),
		Status:      p.Status,
		Hits:        p.Hits,
		Copyright:   p.Copyright,
		Published:   p.Published,
	}
	for i := range p.Visualizes {
		v := &p.Visualizes[i]
		vr := VisualizeResponse{
			ID:        v.ID,
			Order:     v.Order,
			Thumbnail: s.thumbnail(v.Thumbnail),
			Attribute: rawJSON(v.Attribute),
		}
		if v.Data != nil {
			vr.Data = &DataResponse{
				Type:          v.Data.Type,
				VisualizeData: rawJSON(v.Data.VisualizeData),
				Metadata:      rawJSON(v.Data.Metadata),
			}
		}
		if v.Filter != nil {
			vr.Filter = &FilterResponse{Content: rawJSON(v.Filter.Content)}
		}
		if v.VisualizeType != nil {
			vr.Type = &TypeResponse{
				Title:     v.VisualizeType.Title,
				Alias:     v.VisualizeType.Alias,
				Attribute: rawJSON(v.VisualizeType.Attribute),
			}
		}
		out.Visualize = append(out.Visualize, vr)
	}
	return out
}

func (s *Service) toListItems(ps []*domain.Project) []ListItem {
	out := make([]ListItem, 0, len(ps))
	for _, p := range ps {
		item := ListItem{
			ID:          p.ID,
			Title:       p.Title,
			User:        ownerEmail(p),
			Description: p.Description,
			Status:      p.Status,
			Hits:        p.Hits,
			Copyright:   p.Copyright,
			Published:   p.Published,
			Visualize:   make([]ListVisualize, 0, len(p.Visualizes)),
		}
		for i := range p.Visualizes {
			item.Visualize = append(item.Visualize, ListVisualize{
				ID:        p.Visualizes[i].ID,
				Thumbnail: s.thumbnail(p.Visualizes[i].Thumbnail),
			})
		}
		out = append(out, item)
	}
	return out
}
