package media

import (
	"errors"

	"go.uber.org/zap"
)

// Lifecycle keeps image columns and stored files 1:1. Writers open a Batch,
// record which paths the write replaces or drops, and commit the batch after
// the database transaction commits so no file is removed while a row still
// points at it.
type Lifecycle struct {
	store Store
	log   *zap.Logger
}

func NewLifecycle(store Store, log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{store: store, log: log}
}

func (l *Lifecycle) Store() Store { return l.store }

func (l *Lifecycle) URL(rel string) string { return l.store.URL(rel) }

func (l *Lifecycle) Begin() *Batch {
	return &Batch{
		l:       l,
		written: make(map[string]bool),
		kept:    make(map[string]struct{}),
	}
}

type Batch struct {
	l       *Lifecycle
	remove  []string
	written map[string]bool // path -> existed before this batch wrote it
	kept    map[string]struct{}
}

// Replace records an update of an image column. The old file is dropped
// only when the row already pointed at a different file.
func (b *Batch) Replace(old, new string) {
	if old != "" && old != new {
		b.remove = append(b.remove, old)
	}
}

// Release records that a row referencing path was deleted or cleared.
func (b *Batch) Release(path string) {
	if path != "" {
		b.remove = append(b.remove, path)
	}
}

// Keep protects a released path that the row still references after all.
func (b *Batch) Keep(path string) {
	if path != "" {
		b.kept[path] = struct{}{}
	}
}

// Put writes a file as part of the batch. Paths written here survive a
// Release of the same path and are removed again on Rollback.
func (b *Batch) Put(rel string, data []byte) error {
	existed := b.l.store.Exists(rel)
	if err := b.l.store.Save(rel, data); err != nil {
		return err
	}
	if _, seen := b.written[rel]; !seen {
		b.written[rel] = existed
	}
	return nil
}

// Pending returns the paths Commit would remove.
func (b *Batch) Pending() []string {
	seen := make(map[string]struct{}, len(b.remove))
	var out []string
	for _, p := range b.remove {
		if _, ok := b.written[p]; ok {
			continue
		}
		if _, ok := b.kept[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Commit removes the files dropped by the write. Removal failures leave an
// orphan file behind; they are logged and returned but never undo the write.
func (b *Batch) Commit() error {
	var errs []error
	for _, p := range b.Pending() {
		if err := b.l.store.Remove(p); err != nil {
			b.l.log.Warn("media cleanup failed", zap.String("path", p), zap.Error(err))
			errs = append(errs, err)
		}
	}
	b.remove = nil
	return errors.Join(errs...)
}

// Rollback removes files created by a write that did not commit. Files that
// existed before were overwritten in place and cannot be restored.
func (b *Batch) Rollback() {
	for p, existed := range b.written {
		if existed {
			b.l.log.Warn("media rollback cannot restore overwritten file", zap.String("path", p))
			continue
		}
		if err := b.l.store.Remove(p); err != nil {
			b.l.log.Warn("media rollback failed", zap.String("path", p), zap.Error(err))
		}
	}
	b.written = make(map[string]bool)
	b.remove = nil
}
