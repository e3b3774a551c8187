package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daisy/internal/domain"
)

type ProfileImageRepository struct {
	db *gorm.DB
}

func NewProfileImageRepository(db *gorm.DB) *ProfileImageRepository {
	return &ProfileImageRepository{db: db}
}

func (r *ProfileImageRepository) DB() *gorm.DB { return r.db }

func (r *ProfileImageRepository) WithTx(tx *gorm.DB) *ProfileImageRepository {
	return &ProfileImageRepository{db: tx}
}

// List returns every profile image, or only the ones of userID when it is set.
func (r *ProfileImageRepository) List(ctx context.Context, userID int64) ([]domain.ProfileImage, error) {
	q := r.db.WithContext(ctx).Order("id")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var out []domain.ProfileImage
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfileImageRepository) GetByID(ctx context.Context, id int64) (*domain.ProfileImage, error) {
	var p domain.ProfileImage
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProfileImageRepository) Create(ctx context.Context, p *domain.ProfileImage) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProfileImageRepository) UpdateImage(ctx context.Context, p *domain.ProfileImage) error {
	return r.db.WithContext(ctx).Model(p).Select("image", "updated_at").Updates(p).Error
}

func (r *ProfileImageRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.ProfileImage{}, id).Error
}
