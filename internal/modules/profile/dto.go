package profile

import (
	"time"

	"daisy/internal/domain"
	"daisy/internal/media"
)

// ImageRequest is the JSON form of a profile image write.
type ImageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// Upload is a decoded image plus how it arrived. Multipart uploads keep
// their file name; data URIs are named after the owner.
type Upload struct {
	Name    string
	Image   *media.Image
	DataURI bool
}

type Response struct {
	ID       int64     `json:"id"`
	User     int64     `json:"user"`
	Image    *string   `json:"image"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func toResponse(p *domain.ProfileImage, url func(string) string) Response {
	out := Response{ID: p.ID, User: p.UserID, Created: p.CreatedAt, Modified: p.UpdatedAt}
	if p.Image != "" {
		u := url(p.Image)
		out.Image = &u
	}
	return out
}
