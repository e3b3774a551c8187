package catalog

import (
	"context"
	"encoding/json"

	"daisy/internal/audit"
	"daisy/internal/domain"
	"daisy/internal/media"
)

func (s *Service) ListVisualizeTypes(ctx context.Context) ([]domain.VisualizeType, error) {
	return s.repo.ListVisualizeTypes(ctx)
}

func (s *Service) GetVisualizeType(ctx context.Context, id int64) (*domain.VisualizeType, error) {
	vt, err := s.repo.GetVisualizeType(ctx, id)
	return vt, mapRepoErr(err)
}

// imageSlot ties one of the three image columns to its upload and directory.
type imageSlot struct {
	field  *string
	upload *Upload
	dir    string
	name   string
}

func slots(vt *domain.VisualizeType, in VisualizeTypeInput) []imageSlot {
	return []imageSlot{
		{&vt.Image, in.Image, media.DirVisualizeTypes, "image"},
		{&vt.SampleImage, in.SampleImage, media.DirSampleData, "sample_image"},
		{&vt.SettingImage, in.SettingImage, media.DirSettingData, "setting_image"},
	}
}

func applyScalars(vt *domain.VisualizeType, in VisualizeTypeInput, changed map[string]any) error {
	if in.Title != nil {
		vt.Title = *in.Title
		changed["title"] = *in.Title
	}
	if in.Alias != nil {
		vt.Alias = *in.Alias
		changed["alias"] = *in.Alias
	}
	if in.Description != nil {
		vt.Description = *in.Description
		changed["description"] = *in.Description
	}
	if in.Attribute != nil {
		if !json.Valid(in.Attribute) {
			return ErrInvalidJSON
		}
		vt.Attribute = in.Attribute
		changed["attribute"] = json.RawMessage(in.Attribute)
	}
	return nil
}

func (s *Service) CreateVisualizeType(ctx context.Context, actorID int64, in VisualizeTypeInput) (*domain.VisualizeType, error) {
	vt := &domain.VisualizeType{}
	if err := applyScalars(vt, in, map[string]any{}); err != nil {
		return nil, err
	}

	batch := s.files.Begin()
	for _, slot := range slots(vt, in) {
		if slot.upload == nil {
			continue
		}
		path, err := put(batch, slot.dir, slot.upload)
		if err != nil {
			batch.Rollback()
			return nil, err
		}
		*slot.field = path
	}

	if err := s.repo.CreateVisualizeType(ctx, vt); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, vt, audit.ActionAdd, nil)
	return vt, nil
}

// UpdateVisualizeType replaces each image independently; columns without a
// new upload keep their file.
func (s *Service) UpdateVisualizeType(ctx context.Context, actorID int64, id int64, in VisualizeTypeInput) (*domain.VisualizeType, error) {
	vt, err := s.repo.GetVisualizeType(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	changed := map[string]any{}
	if err := applyScalars(vt, in, changed); err != nil {
		return nil, err
	}

	batch := s.files.Begin()
	for _, slot := range slots(vt, in) {
		if slot.upload == nil {
			continue
		}
		path, err := put(batch, slot.dir, slot.upload)
		if err != nil {
			batch.Rollback()
			return nil, err
		}
		batch.Replace(*slot.field, path)
		*slot.field = path
		changed[slot.name] = path
	}

	if err := s.repo.UpdateVisualizeType(ctx, vt); err != nil {
		batch.Rollback()
		return nil, mapRepoErr(err)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, vt, audit.ActionChange, changed)
	return vt, nil
}

func (s *Service) DeleteVisualizeType(ctx context.Context, actorID int64, id int64) error {
	vt, err := s.repo.GetVisualizeType(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	inUse, err := s.repo.VisualizeTypeInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrInUse
	}

	if err := s.repo.DeleteVisualizeType(ctx, id); err != nil {
		return err
	}
	batch := s.files.Begin()
	for _, p := range vt.Images() {
		batch.Release(p)
	}
	_ = batch.Commit()

	s.audit.Record(ctx, actorID, vt, audit.ActionDelete, nil)
	return nil
}
