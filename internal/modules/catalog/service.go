package catalog

import (
	"context"
	"errors"

	"daisy/internal/audit"
	"daisy/internal/domain"
	"daisy/internal/media"
	"daisy/internal/repository"
)

type Service struct {
	repo  *repository.CatalogRepository
	files *media.Lifecycle
	audit *audit.Recorder
}

func NewService(repo *repository.CatalogRepository, files *media.Lifecycle, rec *audit.Recorder) *Service {
	return &Service{repo: repo, files: files, audit: rec}
}

func (s *Service) URL(path string) string { return s.files.URL(path) }

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case repository.IsUniqueViolation(err):
		return ErrConflict
	}
	return err
}

// put stores an upload under dir inside batch and returns its path.
func put(b *media.Batch, dir string, u *Upload) (string, error) {
	path := media.UploadPath(dir, u.Name, u.Image.Ext)
	if err := b.Put(path, u.Image.Data); err != nil {
		return "", err
	}
	return path, nil
}

/* ---------- CATEGORY ICONS ---------- */

func (s *Service) ListIcons(ctx context.Context, title string) ([]domain.CategoryIcon, error) {
	return s.repo.ListIcons(ctx, title)
}

func (s *Service) GetIcon(ctx context.Context, id int64) (*domain.CategoryIcon, error) {
	icon, err := s.repo.GetIcon(ctx, id)
	return icon, mapRepoErr(err)
}

func (s *Service) CreateIcon(ctx context.Context, actorID int64, title string, img *Upload) (*domain.CategoryIcon, error) {
	if img == nil {
		return nil, ErrImageMissing
	}

	batch := s.files.Begin()
	path, err := put(batch, media.DirCategoryIcons, img)
	if err != nil {
		return nil, err
	}

	icon := &domain.CategoryIcon{Title: title, Image: path}
	if err := s.repo.CreateIcon(ctx, icon); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, icon, audit.ActionAdd, nil)
	return icon, nil
}

// UpdateIcon changes the title and, when img is set, swaps the image file.
func (s *Service) UpdateIcon(ctx context.Context, actorID int64, id int64, title *string, img *Upload) (*domain.CategoryIcon, error) {
	icon, err := s.repo.GetIcon(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	changed := map[string]any{}
	batch := s.files.Begin()
	if title != nil {
		icon.Title = *title
		changed["title"] = *title
	}
	if img != nil {
		path, err := put(batch, media.DirCategoryIcons, img)
		if err != nil {
			return nil, err
		}
		batch.Replace(icon.Image, path)
		icon.Image = path
		changed["image"] = path
	}

	if err := s.repo.UpdateIcon(ctx, icon); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, icon, audit.ActionChange, changed)
	return icon, nil
}

func (s *Service) DeleteIcon(ctx context.Context, actorID int64, id int64) error {
	icon, err := s.repo.GetIcon(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	inUse, err := s.repo.IconInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrInUse
	}

	batch := s.files.Begin()
	if err := s.repo.DeleteIcon(ctx, id); err != nil {
		return err
	}
	batch.Release(icon.Image)
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, icon, audit.ActionDelete, nil)
	return nil
}

/* ---------- CATEGORIES ---------- */

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	return c, mapRepoErr(err)
}

func (s *Service) checkIcon(ctx context.Context, id int64) error {
	if _, err := s.repo.GetIcon(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIconNotFound
		}
		return err
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, actorID int64, req CategoryRequest) (*domain.Category, error) {
	if err := s.checkIcon(ctx, req.CategoryIconID); err != nil {
		return nil, err
	}

	c := &domain.Category{
		Title:          req.Title,
		Description:    req.Description,
		Code:           req.Code,
		CategoryIconID: req.CategoryIconID,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	s.audit.Record(ctx, actorID, c, audit.ActionAdd, nil)
	return s.GetCategory(ctx, c.ID)
}

func (s *Service) UpdateCategory(ctx context.Context, actorID int64, id int64, req CategoryRequest) (*domain.Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.checkIcon(ctx, req.CategoryIconID); err != nil {
		return nil, err
	}

	c.Title = req.Title
	c.Description = req.Description
	c.Code = req.Code
	c.CategoryIconID = req.CategoryIconID
	c.CategoryIcon = nil
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	s.audit.Record(ctx, actorID, c, audit.ActionChange, req)
	return s.GetCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, actorID int64, id int64) error {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, c, audit.ActionDelete, nil)
	return nil
}
