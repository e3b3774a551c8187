package profile

import (
	"context"
	"errors"

	"daisy/internal/audit"
	"daisy/internal/domain"
	"daisy/internal/media"
	"daisy/internal/repository"
)

type Service struct {
	repo  *repository.ProfileImageRepository
	files *media.Lifecycle
	audit *audit.Recorder
}

func NewService(repo *repository.ProfileImageRepository, files *media.Lifecycle, rec *audit.Recorder) *Service {
	return &Service{repo: repo, files: files, audit: rec}
}

func (s *Service) URL(path string) string { return s.files.URL(path) }

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case repository.IsUniqueViolation(err):
		return ErrAlreadyExists
	}
	return err
}

func put(b *media.Batch, userID int64, u *Upload) (string, error) {
	path := media.UploadPath(media.DirProfile, u.Name, u.Image.Ext)
	if u.DataURI {
		var err error
		if path, err = media.ProfilePath(userID, u.Image.Ext); err != nil {
			return "", err
		}
	}
	if err := b.Put(path, u.Image.Data); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the caller's image, or every image for staff.
func (s *Service) List(ctx context.Context, userID int64, staff bool) ([]domain.ProfileImage, error) {
	if staff {
		userID = 0
	}
	return s.repo.List(ctx, userID)
}

// Get hides images of other users unless the caller is staff.
func (s *Service) Get(ctx context.Context, userID int64, staff bool, id int64) (*domain.ProfileImage, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !staff && p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}

// Create stores the caller's profile image. Each user has at most one; img
// may be nil for an empty placeholder.
func (s *Service) Create(ctx context.Context, userID int64, img *Upload) (*domain.ProfileImage, error) {
	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyExists
	}

	batch := s.files.Begin()
	p := &domain.ProfileImage{UserID: userID}
	if img != nil {
		if p.Image, err = put(batch, userID, img); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, userID, p, audit.ActionAdd, nil)
	return p, nil
}

// Update swaps the stored file. The previous one is removed after the row
// points at the new path.
func (s *Service) Update(ctx context.Context, userID int64, staff bool, id int64, img *Upload) (*domain.ProfileImage, error) {
	p, err := s.Get(ctx, userID, staff, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return p, nil
	}

	batch := s.files.Begin()
	path, err := put(batch, p.UserID, img)
	if err != nil {
		return nil, err
	}
	batch.Replace(p.Image, path)
	p.Image = path
	if err := s.repo.UpdateImage(ctx, p); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, userID, p, audit.ActionChange, map[string]any{"image": path})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, staff bool, id int64) error {
	p, err := s.Get(ctx, userID, staff, id)
	if err != nil {
		return err
	}

	batch := s.files.Begin()
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	batch.Release(p.Image)
	_ = batch.Commit()

	s.audit.Record(ctx, userID, p, audit.ActionDelete, nil)
	return nil
}
