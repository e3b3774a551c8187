package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daisy/internal/domain"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) DB() *gorm.DB { return r.db }

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: tx}
}

// --- category icons ---

func (r *CatalogRepository) ListIcons(ctx context.Context, title string) ([]domain.CategoryIcon, error) {
	q := r.db.WithContext(ctx).Order("id")
	if title != "" {
		q = q.Where("title = ?", title)
	}
	var out []domain.CategoryIcon
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) GetIcon(ctx context.Context, id int64) (*domain.CategoryIcon, error) {
	var icon domain.CategoryIcon
	if err := r.db.WithContext(ctx).First(&icon, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &icon, nil
}

func (r *CatalogRepository) CreateIcon(ctx context.Context, icon *domain.CategoryIcon) error {
	return r.db.WithContext(ctx).Create(icon).Error
}

func (r *CatalogRepository) UpdateIcon(ctx context.Context, icon *domain.CategoryIcon) error {
	return r.db.WithContext(ctx).Model(icon).Select("title", "image", "updated_at").Updates(icon).Error
}

func (r *CatalogRepository) DeleteIcon(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.CategoryIcon{}, id).Error
}

func (r *CatalogRepository) IconInUse(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("category_icon_id = ?", id).Count(&n).Error
	return n > 0, err
}

// --- categories ---

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Preload("CategoryIcon").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Preload("CategoryIcon").First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Model(c).Omit(clause.Associations).
		Select("title", "description", "code", "category_icon_id", "updated_at").
		Updates(c).Error
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Category{}, id).Error
}

// --- visualize types ---

func (r *CatalogRepository) ListVisualizeTypes(ctx context.Context) ([]domain.VisualizeType, error) {
	var out []domain.VisualizeType
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) GetVisualizeType(ctx context.Context, id int64) (*domain.VisualizeType, error) {
	var vt domain.VisualizeType
	if err := r.db.WithContext(ctx).First(&vt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &vt, nil
}

func (r *CatalogRepository) CreateVisualizeType(ctx context.Context, vt *domain.VisualizeType) error {
	return r.db.WithContext(ctx).Create(vt).Error
}

func (r *CatalogRepository) UpdateVisualizeType(ctx context.Context, vt *domain.VisualizeType) error {
	return r.db.WithContext(ctx).Model(vt).
		Select("title", "alias", "image", "sample_image", "setting_image", "attribute", "description", "updated_at").
		Updates(vt).Error
}

func (r *CatalogRepository) DeleteVisualizeType(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.VisualizeType{}, id).Error
}

func (r *CatalogRepository) VisualizeTypeInUse(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Visualize{}).Where("visualize_type_id = ?", id).Count(&n).Error
	return n > 0, err
}

// ExistingVisualizeTypes returns which of ids exist.
func (r *CatalogRepository) ExistingVisualizeTypes(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []int64
	err := r.db.WithContext(ctx).Model(&domain.VisualizeType{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}
