package catalog

import (
	"time"

	"gorm.io/datatypes"

	"daisy/internal/domain"
	"daisy/internal/media"
)

// Upload is a decoded image plus the client file name.
type Upload struct {
	Name  string
	Image *media.Image
}

type CategoryRequest struct {
	Title          string `json:"title" validate:"required,max=100"`
	Description    string `json:"description" validate:"max=1024"`
	Code           string `json:"code" validate:"max=6"`
	CategoryIconID int64  `json:"category_icon" validate:"required,gt=0"`
}

type VisualizeTypeInput struct {
	Title        *string
	Alias        *string
	Description  *string
	Attribute    datatypes.JSON
	Image        *Upload
	SampleImage  *Upload
	SettingImage *Upload
}

type IconResponse struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Image    string    `json:"image"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type CategoryResponse struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Code           string        `json:"code"`
	CategoryIconID int64         `json:"category_icon"`
	Icon           *IconResponse `json:"icon,omitempty"`
	Created        time.Time     `json:"created"`
	Modified       time.Time     `json:"modified"`
}

type VisualizeTypeResponse struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Alias        string         `json:"alias"`
	Image        string         `json:"image"`
	SampleImage  string         `json:"sample_image"`
	SettingImage string         `json:"setting_image"`
	Attribute    datatypes.JSON `json:"attribute"`
	Description  string         `json:"description"`
	Created      time.Time      `json:"created"`
	Modified     time.Time      `json:"modified"`
}

type urlFunc func(string) string

func toIconResponse(i *domain.CategoryIcon, url urlFunc) IconResponse {
	return IconResponse{ID: i.ID, Title: i.Title, Image: url(i.Image), Created: i.CreatedAt, Modified: i.UpdatedAt}
}

func toCategoryResponse(c *domain.Category, url urlFunc) CategoryResponse {
	out := CategoryResponse{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Code:           c.Code,
		CategoryIconID: c.CategoryIconID,
		Created:        c.CreatedAt,
		Modified:       c.UpdatedAt,
	}
	if c.CategoryIcon != nil {
		icon := toIconResponse(c.CategoryIcon, url)
		out.Icon = &icon
	}
	return out
}

func toVisualizeTypeResponse(t *domain.VisualizeType, url urlFunc) VisualizeTypeResponse {
	return VisualizeTypeResponse{
		ID:           t.ID,
		Title:        t.Title,
		Alias:        t.Alias,
		Image:        url(t.Image),
		SampleImage:  url(t.SampleImage),
		SettingImage: url(t.SettingImage),
		Attribute:    t.Attribute,
		Description:  t.Description,
		Created:      t.CreatedAt,
		Modified:     t.UpdatedAt,
	}
}
