package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJCodeOne/freshwax-sub002/storage"
)

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) ListPrefix(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	// ListPrefix contract: sorted by key.
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	infos := make([]storage.ObjectInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(f.objects[key]))})
	}
	return infos, nil
}

func (f *fakeStore) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

const validMetadata = `{"artistName":"DJ Test","releaseName":"First EP","tracks":[{"trackNumber":1,"title":"Opener"},{"trackNumber":2,"title":"Closer"}]}`

func TestParseFullLayout(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-1/metadata.json":     []byte(validMetadata),
		"submissions/sub-1/artwork/cover.jpg": {1},
		"submissions/sub-1/tracks/02-b.wav":   {1},
		"submissions/sub-1/tracks/01-a.wav":   {1},
	}}

	parsed, err := NewParser(store).Parse(context.Background(), "sub-1")
	require.NoError(t, err)

	assert.Equal(t, "DJ Test", parsed.Metadata.ArtistName)
	assert.Equal(t, "submissions/sub-1/artwork/cover.jpg", parsed.ArtworkKey)
	// Lexicographic key order decides track order.
	assert.Equal(t, []string{
		"submissions/sub-1/tracks/01-a.wav",
		"submissions/sub-1/tracks/02-b.wav",
	}, parsed.TrackKeys)
}

func TestParseRootFallbacks(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-2/metadata.json": []byte(validMetadata),
		"submissions/sub-2/front.png":     {1},
		"submissions/sub-2/one.mp3":       {1},
		"submissions/sub-2/two.mp3":       {1},
	}}

	parsed, err := NewParser(store).Parse(context.Background(), "sub-2")
	require.NoError(t, err)

	assert.Equal(t, "submissions/sub-2/front.png", parsed.ArtworkKey)
	assert.Len(t, parsed.TrackKeys, 2)
}

func TestParseMissingArtworkIsNotFatal(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-3/metadata.json":   []byte(validMetadata),
		"submissions/sub-3/tracks/01-a.wav": {1},
	}}

	parsed, err := NewParser(store).Parse(context.Background(), "sub-3")
	require.NoError(t, err)
	assert.Empty(t, parsed.ArtworkKey)
}

func TestParseMissingMetadata(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-4/tracks/01-a.wav": {1},
	}}

	_, err := NewParser(store).Parse(context.Background(), "sub-4")
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestParseUnparseableMetadata(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-5/metadata.json":   []byte("{not json"),
		"submissions/sub-5/tracks/01-a.wav": {1},
	}}

	_, err := NewParser(store).Parse(context.Background(), "sub-5")
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestParseNoTracks(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"submissions/sub-6/metadata.json":     []byte(validMetadata),
		"submissions/sub-6/artwork/cover.jpg": {1},
	}}

	_, err := NewParser(store).Parse(context.Background(), "sub-6")
	assert.ErrorIs(t, err, ErrNoTracksFound)
}

func TestParseEmptySubmission(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}

	_, err := NewParser(store).Parse(context.Background(), "no-meta-id")
	assert.ErrorIs(t, err, ErrMissingMetadata)
}
