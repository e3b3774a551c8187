package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProject_MarkPublished_SetsOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	p := &Project{Status: ProjectDraft}
	assert.False(t, p.MarkPublished(first))
	assert.Nil(t, p.Published)

	p.Status = ProjectPublished
	assert.True(t, p.MarkPublished(first))
	assert.Equal(t, first, *p.Published)

	assert.False(t, p.MarkPublished(later))
	assert.Equal(t, first, *p.Published)

	// unpublishing keeps the first publication time
	p.Status = ProjectDraft
	assert.False(t, p.MarkPublished(later))
	p.Status = ProjectPublished
	assert.False(t, p.MarkPublished(later))
	assert.Equal(t, first, *p.Published)
}

func TestDataType_Valid(t *testing.T) {
	for _, v := range []DataType{DataUpload, DataQuery, DataAPI, DataDB} {
		assert.True(t, v.Valid(), v)
	}
	assert.False(t, DataType("csv").Valid())
	assert.False(t, ProjectStatus("archived").Valid())
}
