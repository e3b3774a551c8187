package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daisy/internal/pkg/pagination"
)

var (
	errNoActor   = errors.New("audit entry without actor")
	errNoSubject = errors.New("audit entry without object id")
)

// Recorder writes audit entries. Recording is best-effort: a failure is
// logged and never reaches the caller.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{db: db, log: log, now: time.Now}
}

// Record stores one entry. For ActionChange, detail summarises what the
// write changed (field values, visualize orders added, updated and removed)
// and ends up JSON-encoded in the message. Raw origin data is never passed.
func (r *Recorder) Record(ctx context.Context, actorID int64, s Subject, action Action, detail any) {
	if err := r.record(ctx, actorID, s, action, detail); err != nil {
		r.log.Warn("audit record failed",
			zap.Int64("user_id", actorID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (r *Recorder) record(ctx context.Context, actorID int64, s Subject, action Action, detail any) error {
	if actorID == 0 {
		return errNoActor
	}
	if s == nil || s.AuditID() == 0 {
		return errNoSubject
	}
	if !action.Valid() {
		return fmt.Errorf("unknown audit action %q", action)
	}

	repr := s.String()
	if len(repr) > 200 {
		repr = repr[:200]
	}
	entry := &Entry{
		UserID:      actorID,
		ContentType: s.AuditKind(),
		ObjectID:    s.AuditID(),
		ObjectRepr:  repr,
		Action:      action,
		Message:     Message(action, s.AuditKind(), s.String(), detail),
		ActionTime:  r.now().UTC(),
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Message renders the human-readable text of an entry.
func Message(action Action, kind, repr string, detail any) string {
	switch action {
	case ActionAdd:
		return fmt.Sprintf("Added %s %q", kind, repr)
	case ActionChange:
		return fmt.Sprintf("Changed %s for %s %q", encodeDetail(detail), kind, repr)
	case ActionDelete:
		return fmt.Sprintf("Deleted %s %q", kind, repr)
	}
	return ""
}

func encodeDetail(detail any) string {
	switch d := detail.(type) {
	case nil:
		return "{}"
	case json.RawMessage:
		return string(d)
	case []byte:
		return string(d)
	case string:
		return d
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprintf("%v", detail)
	}
	return string(b)
}

type Filter struct {
	Action      Action
	ContentType string
	ObjectID    int64
}

// List returns entries newest first.
func (r *Recorder) List(ctx context.Context, f Filter, p pagination.Params) ([]Entry, int64, error) {
	q := r.db.WithContext(ctx).Model(&Entry{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ContentType != "" {
		q = q.Where("content_type = ?", f.ContentType)
	}
	if f.ObjectID != 0 {
		q = q.Where("object_id = ?", f.ObjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	err := q.Order("action_time DESC").Order("id DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
