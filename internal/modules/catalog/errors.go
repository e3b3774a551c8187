package catalog

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("title or alias already taken")
	ErrInUse        = errors.New("still referenced")
	ErrIconNotFound = errors.New("category icon does not exist")
	ErrImageMissing = errors.New("image is required")
	ErrInvalidJSON  = errors.New("attribute must be a JSON document")
)
