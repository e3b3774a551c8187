package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daisy/internal/domain"
)

const projectOrder = "CASE WHEN projects.published IS NULL THEN 1 ELSE 0 END, projects.published DESC, projects.id DESC"

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) DB() *gorm.DB { return r.db }

// WithTx returns a repository bound to an open transaction.
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// UpdateScalars writes the editable project columns. Hits and created stay
// as they are.
func (r *ProjectRepository) UpdateScalars(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Model(p).
		Select("title", "user_id", "description", "status", "copyright", "published", "updated_at").
		Updates(p).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, id).Error
}

// IncrementHits bumps the counter in a single statement.
func (r *ProjectRepository) IncrementHits(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Model(&domain.Project{}).Where("id = ?", id).
		UpdateColumn("hits", gorm.Expr("hits + ?", 1))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ListPublished(ctx context.Context, limit, offset int) ([]*domain.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Project{}).Where("status = ?", domain.ProjectPublished)
	return r.list(q, limit, offset)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64, status domain.ProjectStatus, limit, offset int) ([]*domain.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Project{}).Where("user_id = ?", ownerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q, limit, offset)
}

func (r *ProjectRepository) list(q *gorm.DB, limit, offset int) ([]*domain.Project, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*domain.Project
	err := q.Preload("User").Order(projectOrder).Limit(limit).Offset(offset).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// LoadVisualizes fills Visualizes of every project, each with its data,
// filter and thumbnail.
func (r *ProjectRepository) LoadVisualizes(ctx context.Context, projects ...*domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(projects))
	byID := make(map[int64]*domain.Project, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Visualizes = nil
	}

	var vs []domain.Visualize
	err := r.db.WithContext(ctx).Preload("VisualizeType").Where("project_id IN ?", ids).
		Order("project_id").Order("display_order").Order("id").
		Find(&vs).Error
	if err != nil {
		return err
	}
	if err := r.attachChildren(ctx, vs); err != nil {
		return err
	}
	for _, v := range vs {
		p := byID[v.ProjectID]
		p.Visualizes = append(p.Visualizes, v)
	}
	return nil
}

// Visualizes returns the visualizes of one project with their children.
func (r *ProjectRepository) Visualizes(ctx context.Context, projectID int64) ([]domain.Visualize, error) {
	var vs []domain.Visualize
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("display_order").Order("id").Find(&vs).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachChildren(ctx, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func (r *ProjectRepository) attachChildren(ctx context.Context, vs []domain.Visualize) error {
	if len(vs) == 0 {
		return nil
	}
	ids := make([]int64, len(vs))
	for i := range vs {
		ids[i] = vs[i].ID
	}

	var data []domain.Data
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&data).Error; err != nil {
		return err
	}
	var filters []domain.Filter
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&filters).Error; err != nil {
		return err
	}
	var thumbs []domain.Thumbnail
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&thumbs).Error; err != nil {
		return err
	}

	dataByID := make(map[int64]*domain.Data, len(data))
	for i := range data {
		dataByID[data[i].ID] = &data[i]
	}
	filterByID := make(map[int64]*domain.Filter, len(filters))
	for i := range filters {
		filterByID[filters[i].ID] = &filters[i]
	}
	thumbByID := make(map[int64]*domain.Thumbnail, len(thumbs))
	for i := range thumbs {
		thumbByID[thumbs[i].ID] = &thumbs[i]
	}

	for i := range vs {
		vs[i].Data = dataByID[vs[i].ID]
		vs[i].Filter = filterByID[vs[i].ID]
		vs[i].Thumbnail = thumbByID[vs[i].ID]
	}
	return nil
}

func (r *ProjectRepository) CreateVisualize(ctx context.Context, v *domain.Visualize) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

func (r *ProjectRepository) UpdateVisualize(ctx context.Context, v *domain.Visualize) error {
	return r.db.WithContext(ctx).Model(v).
		Select("display_order", "visualize_type_id", "attribute", "updated_at").
		Updates(v).Error
}

// DeleteVisualize removes a visualize together with its data, filter and
// thumbnail rows.
func (r *ProjectRepository) DeleteVisualize(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&domain.Thumbnail{}, id).Error; err != nil {
		return err
	}
	if err := db.Delete(&domain.Filter{}, id).Error; err != nil {
		return err
	}
	if err := db.Delete(&domain.Data{}, id).Error; err != nil {
		return err
	}
	return db.Delete(&domain.Visualize{}, id).Error
}

func upsertByID(db *gorm.DB, value any) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(value).Error
}

func (r *ProjectRepository) UpsertData(ctx context.Context, d *domain.Data) error {
	return upsertByID(r.db.WithContext(ctx), d)
}

func (r *ProjectRepository) UpsertFilter(ctx context.Context, f *domain.Filter) error {
	return upsertByID(r.db.WithContext(ctx), f)
}

func (r *ProjectRepository) UpsertThumbnail(ctx context.Context, t *domain.Thumbnail) error {
	return upsertByID(r.db.WithContext(ctx), t)
}

// ThumbnailPaths lists the stored thumbnail files of a project.
func (r *ProjectRepository) ThumbnailPaths(ctx context.Context, projectID int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&domain.Thumbnail{}).
		Joins("JOIN visualizes ON visualizes.id = thumbnails.id").
		Where("visualizes.project_id = ? AND thumbnails.image_path <> ''", projectID).
		Pluck("thumbnails.image_path", &paths).Error
	return paths, err
}

// VisualizeIDs lists visualize ids of a project.
func (r *ProjectRepository) VisualizeIDs(ctx context.Context, projectID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Visualize{}).
		Where("project_id = ?", projectID).Pluck("id", &ids).Error
	return ids, err
}
