package repository

import (
	"context"

	"gorm.io/gorm"

	"daisy/internal/domain"
)

// ReferencedMedia collects every media path stored in an image column.
func ReferencedMedia(ctx context.Context, db *gorm.DB) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	sources := []struct {
		model   any
		columns []string
	}{
		{&domain.CategoryIcon{}, []string{"image"}},
		{&domain.VisualizeType{}, []string{"image", "sample_image", "setting_image"}},
		{&domain.Thumbnail{}, []string{"image_path"}},
		{&domain.ProfileImage{}, []string{"image"}},
	}
	for _, src := range sources {
		for _, col := range src.columns {
			var paths []string
			err := db.WithContext(ctx).Model(src.model).
				Where(col+" IS NOT NULL AND "+col+" <> ''").
				Pluck(col, &paths).Error
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				refs[p] = struct{}{}
			}
		}
	}
	return refs, nil
}
