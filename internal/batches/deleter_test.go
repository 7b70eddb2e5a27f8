package batches

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/vimeo"
)

type fakeBatchStore struct {
	batch      *models.Batch
	cascaded   []uuid.UUID
	cascadeErr error
}

func (s *fakeBatchStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Batch, error) {
	return s.batch, nil
}

func (s *fakeBatchStore) DeleteCascade(_ context.Context, batchID uuid.UUID) (int64, error) {
	if s.cascadeErr != nil {
		return 0, s.cascadeErr
	}
	s.cascaded = append(s.cascaded, batchID)
	return 1, nil
}

type fakeCatalog struct {
	videos  []vimeo.Video
	listErr error
	deleted []string
	failIDs map[string]error
}

func (c *fakeCatalog) ListVideos(_ context.Context) ([]vimeo.Video, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.videos, nil
}

func (c *fakeCatalog) DeleteVideo(_ context.Context, videoID string) error {
	if err := c.failIDs[videoID]; err != nil {
		return err
	}
	c.deleted = append(c.deleted, videoID)
	return nil
}

func video(id, name, description string) vimeo.Video {
	return vimeo.Video{URI: "/videos/" + id, Name: name, Description: description}
}

func TestDeleteBatchMatchesAndCascades(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort", Code: "GO-7"}
	store := &fakeBatchStore{batch: batch}
	catalog := &fakeCatalog{videos: []vimeo.Video{
		video("101", "Go Cohort - Day 1", ""),
		video("102", "Intro session", "recorded for GO-7"),
		video("103", "Rust Cohort - Day 1", ""),
	}}
	d := NewDeleter(store, catalog, nil)

	report, err := d.Delete(context.Background(), batch.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"101", "102"}, report.VimeoDeleted)
	assert.Empty(t, report.VimeoFailed)
	assert.Equal(t, int64(1), report.Deleted)
	assert.Equal(t, []uuid.UUID{batch.ID}, store.cascaded)
	assert.NotContains(t, catalog.deleted, "103")
}

func TestDeleteBatchCollectsPerVideoFailures(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort", Code: "GO-7"}
	store := &fakeBatchStore{batch: batch}
	catalog := &fakeCatalog{
		videos: []vimeo.Video{
			video("101", "Go Cohort - Day 1", ""),
			video("102", "Go Cohort - Day 2", ""),
		},
		failIDs: map[string]error{"101": errors.New("vimeo api: unexpected status 500")},
	}
	d := NewDeleter(store, catalog, nil)

	report, err := d.Delete(context.Background(), batch.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"102"}, report.VimeoDeleted)
	require.Len(t, report.VimeoFailed, 1)
	assert.Equal(t, "101", report.VimeoFailed[0].ID)
	assert.Contains(t, report.VimeoFailed[0].Error, "status 500")
	assert.Equal(t, int64(1), report.Deleted, "local cascade runs despite video failures")
}

func TestDeleteBatchCatalogFetchFailureStillCascades(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort", Code: "GO-7"}
	store := &fakeBatchStore{batch: batch}
	catalog := &fakeCatalog{listErr: errors.New("vimeo unreachable")}
	d := NewDeleter(store, catalog, nil)

	report, err := d.Delete(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Empty(t, report.VimeoDeleted)
	assert.Empty(t, report.VimeoFailed)
	assert.Equal(t, int64(1), report.Deleted)
}

func TestDeleteBatchNotFound(t *testing.T) {
	d := NewDeleter(&fakeBatchStore{}, &fakeCatalog{}, nil)
	_, err := d.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestDeleteBatchCascadeFailureSurfaced(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort", Code: "GO-7"}
	store := &fakeBatchStore{batch: batch, cascadeErr: errors.New("tx failed")}
	catalog := &fakeCatalog{videos: []vimeo.Video{video("101", "Go Cohort - Day 1", "")}}
	d := NewDeleter(store, catalog, nil)

	report, err := d.Delete(context.Background(), batch.ID)
	require.Error(t, err)
	// Remote deletions that already happened are still reported.
	require.NotNil(t, report)
	assert.Equal(t, []string{"101"}, report.VimeoDeleted)
}
