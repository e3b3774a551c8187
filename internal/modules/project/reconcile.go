package project

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"

	"daisy/internal/domain"
	"daisy/internal/media"
	"daisy/internal/repository"
)

// desiredVisualize is a validated VisualizeInput with its thumbnail already
// decoded.
type desiredVisualize struct {
	in    VisualizeInput
	image *media.Image
}

// prepare validates the desired visualize list before any write: unique
// orders, known visualize types, required data documents and decodable
// thumbnails.
func (s *Service) prepare(ctx context.Context, list []VisualizeInput) ([]desiredVisualize, error) {
	out := make([]desiredVisualize, 0, len(list))
	seen := make(map[int]int, len(list))
	typeIDs := make([]int64, 0, len(list))

	for i, in := range list {
		field := fmt.Sprintf("visualize[%d]", i)
		if _, dup := seen[in.Order]; dup {
			return nil, invalid(field+".order", "unique")
		}
		seen[in.Order] = i

		if isNull(in.Data.VisualizeData) {
			return nil, invalid(field+".data.visualize_data", "required")
		}
		for name, doc := range map[string]json.RawMessage{
			".attribute":           in.Attribute,
			".data.visualize_data": in.Data.VisualizeData,
			".data.origin_data":    in.Data.OriginData,
			".data.metadata":       in.Data.Metadata,
		} {
			if !isNull(doc) && !json.Valid(doc) {
				return nil, invalid(field+name, "json")
			}
		}

		meta, err := normalizeMetadata(in.Data.Metadata)
		if err != nil {
			return nil, invalid(field+".data.metadata", "json")
		}
		in.Data.Metadata = meta

		d := desiredVisualize{in: in}
		if in.Thumbnail != nil && in.Thumbnail.Image != "" {
			img, err := media.DecodeDataURI(in.Thumbnail.Image)
			if err != nil {
				return nil, &ImageError{Field: field + ".thumbnail.image", Err: err}
			}
			d.image = img
		}
		typeIDs = append(typeIDs, in.VisualizeType)
		out = append(out, d)
	}

	exists, err := s.catalog.ExistingVisualizeTypes(ctx, typeIDs)
	if err != nil {
		return nil, err
	}
	for i, d := range out {
		if !exists[d.in.VisualizeType] {
			return nil, invalid(fmt.Sprintf("visualize[%d].visualize_type", i), "exists")
		}
	}
	return out, nil
}

// reconcile makes the visualizes of projectID match desired, keyed by
// order. It runs inside the caller's transaction; file removals are only
// scheduled on batch.
func reconcile(ctx context.Context, repo *repository.ProjectRepository, batch *media.Batch, projectID int64, current []domain.Visualize, desired []desiredVisualize) (Changes, error) {
	var ch Changes

	byOrder := make(map[int]*domain.Visualize, len(current))
	for i := range current {
		byOrder[current[i].Order] = &current[i]
	}
	wanted := make(map[int]struct{}, len(desired))

	for _, d := range desired {
		wanted[d.in.Order] = struct{}{}
		if cur, ok := byOrder[d.in.Order]; ok {
			if err := updateVisualize(ctx, repo, batch, cur, d); err != nil {
				return ch, err
			}
			ch.Updated = append(ch.Updated, d.in.Order)
			continue
		}
		if err := createVisualize(ctx, repo, batch, projectID, d); err != nil {
			return ch, err
		}
		ch.Created = append(ch.Created, d.in.Order)
	}

	for i := range current {
		cur := &current[i]
		if _, ok := wanted[cur.Order]; ok {
			continue
		}
		if cur.Thumbnail != nil {
			batch.Release(cur.Thumbnail.ImagePath)
		}
		if err := repo.DeleteVisualize(ctx, cur.ID); err != nil {
			return ch, fmt.Errorf("delete visualize %d: %w", cur.ID, err)
		}
		ch.Deleted = append(ch.Deleted, cur.Order)
	}
	return ch, nil
}

func createVisualize(ctx context.Context, repo *repository.ProjectRepository, batch *media.Batch, projectID int64, d desiredVisualize) error {
	v := &domain.Visualize{
		ProjectID:       projectID,
		Order:           d.in.Order,
		VisualizeTypeID: d.in.VisualizeType,
		Attribute:       jsonDoc(d.in.Attribute),
	}
	if err := repo.CreateVisualize(ctx, v); err != nil {
		return fmt.Errorf("create visualize: %w", err)
	}
	if err := repo.UpsertData(ctx, dataRow(v.ID, d.in.Data)); err != nil {
		return fmt.Errorf("create data: %w", err)
	}
	if d.in.Filter != nil {
		if err := repo.UpsertFilter(ctx, &domain.Filter{ID: v.ID, Content: jsonDoc(d.in.Filter.Content)}); err != nil {
			return fmt.Errorf("create filter: %w", err)
		}
	}
	if d.in.Thumbnail != nil {
		return writeThumbnail(ctx, repo, batch, v.ID, d.image)
	}
	return nil
}

func updateVisualize(ctx context.Context, repo *repository.ProjectRepository, batch *media.Batch, cur *domain.Visualize, d desiredVisualize) error {
	cur.VisualizeTypeID = d.in.VisualizeType
	cur.Attribute = jsonDoc(d.in.Attribute)
	if err := repo.UpdateVisualize(ctx, cur); err != nil {
		return fmt.Errorf("update visualize %d: %w", cur.ID, err)
	}
	if err := repo.UpsertData(ctx, dataRow(cur.ID, d.in.Data)); err != nil {
		return fmt.Errorf("update data %d: %w", cur.ID, err)
	}
	if d.in.Filter != nil {
		if err := repo.UpsertFilter(ctx, &domain.Filter{ID: cur.ID, Content: jsonDoc(d.in.Filter.Content)}); err != nil {
			return fmt.Errorf("update filter %d: %w", cur.ID, err)
		}
	}

	// the stored thumbnail file is always released; it survives only when
	// the payload leaves the thumbnail alone or rewrites the same path
	if cur.Thumbnail != nil {
		batch.Release(cur.Thumbnail.ImagePath)
	}
	if d.in.Thumbnail == nil {
		if cur.Thumbnail != nil {
			batch.Keep(cur.Thumbnail.ImagePath)
		}
		return nil
	}
	return writeThumbnail(ctx, repo, batch, cur.ID, d.image)
}

// writeThumbnail stores img as <visualize id>.<ext> and upserts the row. A
// nil img clears the stored path.
func writeThumbnail(ctx context.Context, repo *repository.ProjectRepository, batch *media.Batch, visualizeID int64, img *media.Image) error {
	t := &domain.Thumbnail{ID: visualizeID}
	if img != nil {
		path, err := media.ThumbnailPath(visualizeID, img.Ext)
		if err != nil {
			return fmt.Errorf("thumbnail %d: %w", visualizeID, err)
		}
		t.ImagePath = path
		if err := batch.Put(t.ImagePath, img.Data); err != nil {
			return fmt.Errorf("write thumbnail %d: %w", visualizeID, err)
		}
	}
	if err := repo.UpsertThumbnail(ctx, t); err != nil {
		return fmt.Errorf("save thumbnail %d: %w", visualizeID, err)
	}
	return nil
}

func dataRow(id int64, in *DataInput) *domain.Data {
	return &domain.Data{
		ID:            id,
		Type:          in.Type,
		VisualizeData: jsonDoc(in.VisualizeData),
		OriginData:    jsonDoc(in.OriginData),
		Metadata:      jsonDoc(in.Metadata),
	}
}

// normalizeMetadata NFC-normalizes a string "title" in a metadata object.
// Other documents pass through untouched.
func normalizeMetadata(raw json.RawMessage) (json.RawMessage, error) {
	if isNull(raw) {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		if json.Valid(raw) {
			return raw, nil
		}
		return nil, err
	}
	title, ok := doc["title"].(string)
	if !ok || norm.NFC.IsNormalString(title) {
		return raw, nil
	}
	doc["title"] = norm.NFC.String(title)
	return json.Marshal(doc)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func jsonDoc(raw json.RawMessage) datatypes.JSON {
	if isNull(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}
