package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJCodeOne/freshwax-sub002/model"
)

type fakeRepo struct {
	releases map[string]*model.Release
	index    *model.CatalogIndex
	failNext bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		releases: make(map[string]*model.Release),
		index:    &model.CatalogIndex{ID: 1},
	}
}

func (f *fakeRepo) UpsertRelease(_ context.Context, release *model.Release) error {
	if f.failNext {
		return errors.New("database unavailable")
	}
	copied := *release
	f.releases[release.ID] = &copied
	return nil
}

func (f *fakeRepo) GetReleaseByID(_ context.Context, id string) (*model.Release, error) {
	return f.releases[id], nil
}

func (f *fakeRepo) GetIndex(_ context.Context) (*model.CatalogIndex, error) {
	copied := *f.index
	copied.Entries = append(model.ReleaseSummaryList{}, f.index.Entries...)
	return &copied, nil
}

func (f *fakeRepo) SaveIndex(_ context.Context, index *model.CatalogIndex) error {
	copied := *index
	f.index = &copied
	return nil
}

func sampleRelease() *model.ProcessedRelease {
	return &model.ProcessedRelease{
		ID:       "dj_test_FW-1709294400000",
		Artist:   "DJ Test",
		Title:    "First EP",
		CoverURL: "https://cdn.example.com/releases/dj_test_FW-1709294400000/artwork/cover.webp",
		ThumbURL: "https://cdn.example.com/releases/dj_test_FW-1709294400000/artwork/thumb.webp",
		Metadata: model.SubmissionMetadata{ArtistName: "DJ Test", ReleaseName: "First EP"},
		Tracks: []model.ProcessedTrack{
			{TrackNumber: 1, Title: "Opener", MP3URL: "a", WAVURL: "b", PreviewURL: "c"},
			{TrackNumber: 2, Title: "Closer", MP3URL: "d", WAVURL: "e", PreviewURL: "f"},
		},
		CreatedAt: time.Now(),
	}
}

func TestWriteCreatesPendingDocument(t *testing.T) {
	repo := newFakeRepo()
	writer := NewWriter(repo, StandardDefaults())

	require.NoError(t, writer.Write(context.Background(), sampleRelease()))

	doc := repo.releases["dj_test_FW-1709294400000"]
	require.NotNil(t, doc)
	assert.Equal(t, model.StatusPending, doc.Status)
	assert.False(t, doc.Published)
	assert.False(t, doc.Approved)
	assert.Len(t, doc.Tracks, 2)
	// Defaults filled in.
	assert.Equal(t, 9.99, doc.Price)
	assert.Equal(t, "Electronic", doc.Genre)
}

func TestWriteIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	writer := NewWriter(repo, StandardDefaults())
	release := sampleRelease()

	require.NoError(t, writer.Write(context.Background(), release))
	require.NoError(t, writer.Write(context.Background(), release))

	// One document, one index entry.
	assert.Len(t, repo.releases, 1)
	assert.Len(t, repo.index.Entries, 1)
	assert.Equal(t, 1, repo.index.TotalReleases)
}

func TestWriteAppendsNewIndexEntries(t *testing.T) {
	repo := newFakeRepo()
	writer := NewWriter(repo, StandardDefaults())

	first := sampleRelease()
	second := sampleRelease()
	second.ID = "other_artist_FW-1709294500000"
	second.Artist = "Other Artist"

	require.NoError(t, writer.Write(context.Background(), first))
	require.NoError(t, writer.Write(context.Background(), second))

	assert.Len(t, repo.index.Entries, 2)
	assert.Equal(t, 2, repo.index.TotalReleases)
	assert.False(t, repo.index.LastUpdated.IsZero())
}

func TestWritePropagatesRepositoryFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = true
	writer := NewWriter(repo, StandardDefaults())

	err := writer.Write(context.Background(), sampleRelease())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog write failed")
}
