package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"daisy/internal/audit"
	"daisy/internal/domain"
	"daisy/internal/media"
	"daisy/internal/pkg/pagination"
	"daisy/internal/repository"
)

type Service struct {
	projects *repository.ProjectRepository
	catalog  *repository.CatalogRepository
	users    *repository.UserRepository
	files    *media.Lifecycle
	audit    *audit.Recorder
	now      func() time.Time
}

func NewService(
	projects *repository.ProjectRepository,
	catalog *repository.CatalogRepository,
	users *repository.UserRepository,
	files *media.Lifecycle,
	rec *audit.Recorder,
) *Service {
	return &Service{
		projects: projects,
		catalog:  catalog,
		users:    users,
		files:    files,
		audit:    rec,
		now:      time.Now,
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

/* ---------- READS ---------- */

func (s *Service) ListPublished(ctx context.Context, page pagination.Params) ([]*domain.Project, int64, error) {
	ps, total, err := s.projects.ListPublished(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	if err := s.projects.LoadVisualizes(ctx, ps...); err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

// ListMine lists every project of ownerID, drafts included. An empty status
// means no filter.
func (s *Service) ListMine(ctx context.Context, ownerID int64, status domain.ProjectStatus, page pagination.Params) ([]*domain.Project, int64, error) {
	ps, total, err := s.projects.ListByOwner(ctx, ownerID, status, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	if err := s.projects.LoadVisualizes(ctx, ps...); err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

// Retrieve is the public detail view. Every call counts as a hit.
func (s *Service) Retrieve(ctx context.Context, id int64) (*domain.Project, error) {
	if err := s.projects.IncrementHits(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.load(ctx, id)
}

// RetrieveMine returns a project to its owner or to staff without counting
// a hit. Projects of other users look missing.
func (s *Service) RetrieveMine(ctx context.Context, actor Actor, id int64) (*domain.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(p) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.projects.LoadVisualizes(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

/* ---------- WRITES ---------- */

// resolveOwner maps the "user" email of a payload to an account. Only staff
// may hand a project to somebody else.
func (s *Service) resolveOwner(ctx context.Context, actor Actor, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("user", "exists")
	}
	if err != nil {
		return nil, err
	}
	if u.ID != actor.UserID && !actor.Staff {
		return nil, ErrForbidden
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*domain.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "required")
	}

	p := &domain.Project{
		Title:       title,
		UserID:      actor.UserID,
		Description: req.Description,
		Status:      req.Status,
		Copyright:   req.Copyright,
	}
	if p.Status == "" {
		p.Status = domain.ProjectDraft
	}
	if req.User != "" {
		owner, err := s.resolveOwner(ctx, actor, req.User)
		if err != nil {
			return nil, err
		}
		p.UserID = owner.ID
	}

	desired, err := s.prepare(ctx, req.Visualize)
	if err != nil {
		return nil, err
	}
	p.MarkPublished(s.now())

	batch := s.files.Begin()
	err = s.projects.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.projects.WithTx(tx)
		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		_, err := reconcile(ctx, repo, batch, p.ID, nil, desired)
		return err
	})
	if err != nil {
		batch.Rollback()
		return nil, err
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actor.UserID, p, audit.ActionAdd, nil)
	return s.load(ctx, p.ID)
}

// Update applies a partial payload. Scalars left nil keep their value; a nil
// Visualize leaves the children alone.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, req UpdateRequest) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !actor.canEdit(p) {
		return nil, ErrForbidden
	}

	changed := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title", "required")
		}
		if title != p.Title {
			p.Title = title
			changed["title"] = title
		}
	}
	if req.User != nil && *req.User != "" {
		owner, err := s.resolveOwner(ctx, actor, *req.User)
		if err != nil {
			return nil, err
		}
		if owner.ID != p.UserID {
			p.UserID = owner.ID
			p.User = owner
			changed["user"] = owner.Email
		}
	}
	if req.Description != nil && *req.Description != p.Description {
		p.Description = *req.Description
		changed["description"] = p.Description
	}
	if req.Status != nil && *req.Status != p.Status {
		p.Status = *req.Status
		changed["status"] = p.Status
	}
	if req.Copyright != nil && *req.Copyright != p.Copyright {
		p.Copyright = *req.Copyright
		changed["copyright"] = p.Copyright
	}

	var desired []desiredVisualize
	if req.Visualize != nil {
		if desired, err = s.prepare(ctx, *req.Visualize); err != nil {
			return nil, err
		}
	}
	if p.MarkPublished(s.now()) {
		changed["published"] = p.Published
	}

	batch := s.files.Begin()
	err = s.projects.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.projects.WithTx(tx)
		if err := repo.UpdateScalars(ctx, p); err != nil {
			return fmt.Errorf("update project %d: %w", p.ID, err)
		}
		if req.Visualize == nil {
			return nil
		}
		current, err := repo.Visualizes(ctx, p.ID)
		if err != nil {
			return err
		}
		ch, err := reconcile(ctx, repo, batch, p.ID, current, desired)
		if err != nil {
			return err
		}
		changed["visualize"] = ch
		return nil
	})
	if err != nil {
		batch.Rollback()
		return nil, err
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actor.UserID, p, audit.ActionChange, changed)
	return s.load(ctx, p.ID)
}

// Delete removes the project, its visualize tree and every thumbnail file.
func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if !actor.canEdit(p) {
		return ErrForbidden
	}

	batch := s.files.Begin()
	err = s.projects.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.projects.WithTx(tx)
		paths, err := repo.ThumbnailPaths(ctx, p.ID)
		if err != nil {
			return err
		}
		ids, err := repo.VisualizeIDs(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, vid := range ids {
			if err := repo.DeleteVisualize(ctx, vid); err != nil {
				return fmt.Errorf("delete visualize %d: %w", vid, err)
			}
		}
		if err := repo.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete project %d: %w", p.ID, err)
		}
		for _, path := range paths {
			batch.Release(path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actor.UserID, p, audit.ActionDelete, nil)
	return nil
}
