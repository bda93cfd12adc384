package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filez-project/filez/pkg/models"
)

type fakeProvider struct {
	healthErr error
}

func (f *fakeProvider) OpenForWrite(context.Context, string) (int64, error)      { return 0, nil }
func (f *fakeProvider) AppendRange(context.Context, string, int64, int64, io.Reader) error {
	return nil
}
func (f *fakeProvider) ReadRange(context.Context, string, int64, int64) (io.ReadCloser, error) {
	return nil, nil
}
func (f *fakeProvider) Stat(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeProvider) Delete(context.Context, string) error        { return nil }
func (f *fakeProvider) Health(context.Context) error                { return f.healthErr }

func TestRegistry_GetMissingReturnsError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(models.StorageLocID(models.NewID()))
	assert.Error(t, err)
}

func TestRegistry_SetThenGetReturnsProvider(t *testing.T) {
	r := NewRegistry()
	id := models.StorageLocID(models.NewID())
	p := &fakeProvider{}

	r.Set(id, p)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestRegistry_RemoveDropsProvider(t *testing.T) {
	r := NewRegistry()
	id := models.StorageLocID(models.NewID())
	r.Set(id, &fakeProvider{})

	r.Remove(id)

	_, err := r.Get(id)
	assert.Error(t, err)
}

func TestRegistry_HealthOnlyReturnsFailures(t *testing.T) {
	r := NewRegistry()
	healthyID := models.StorageLocID(models.NewID())
	sickID := models.StorageLocID(models.NewID())

	r.Set(healthyID, &fakeProvider{})
	r.Set(sickID, &fakeProvider{healthErr: errors.New("connection refused")})

	failures := r.Health(context.Background())

	require.Len(t, failures, 1)
	assert.Contains(t, failures, sickID)
}
