package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
	"github.com/DJCodeOne/freshwax-sub002/storage"
)

// KeyPrefix is the storage prefix all submissions live under.
const KeyPrefix = "submissions/"

var (
	// ErrMissingMetadata means the submission has no parseable metadata.json.
	// Fatal: nothing can be processed without the declared metadata.
	ErrMissingMetadata = errors.New("submission metadata.json is missing or unreadable")

	// ErrNoTracksFound means no audio files were found in the submission.
	ErrNoTracksFound = errors.New("no audio tracks found in submission")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".aiff": true,
	".aif":  true,
	".m4a":  true,
	".ogg":  true,
}

// objectStore is the slice of storage the parser needs.
type objectStore interface {
	ListPrefix(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// Parser discovers and classifies the files of a submission.
type Parser struct {
	store objectStore
}

// NewParser creates a Parser backed by the given object store.
func NewParser(store objectStore) *Parser {
	return &Parser{store: store}
}

// Prefix returns the storage key prefix for a submission id.
func Prefix(submissionID string) string {
	return KeyPrefix + submissionID + "/"
}

// Parse lists everything under the submission's prefix and classifies each
// object by filename heuristics. The returned track keys are in lexicographic
// storage-key order, which the submission naming convention guarantees matches
// the intended track order.
func (p *Parser) Parse(ctx context.Context, submissionID string) (*model.ParsedSubmission, error) {
	prefix := Prefix(submissionID)

	objects, err := p.store.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission %s: %w", submissionID, err)
	}

	var metadataKey string
	var artworkKey, rootImageKey string
	var trackKeys, rootAudioKeys []string

	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, prefix)
		ext := strings.ToLower(path.Ext(obj.Key))
		atRoot := !strings.Contains(rel, "/")

		switch {
		case ext == ".json":
			if metadataKey == "" {
				metadataKey = obj.Key
			}
		case imageExtensions[ext]:
			lower := strings.ToLower(rel)
			if strings.Contains(lower, "artwork") || strings.Contains(lower, "cover") {
				if artworkKey == "" {
					artworkKey = obj.Key
				}
			} else if atRoot && rootImageKey == "" {
				rootImageKey = obj.Key
			}
		case audioExtensions[ext]:
			if hasTracksSegment(rel) {
				trackKeys = append(trackKeys, obj.Key)
			} else if atRoot {
				rootAudioKeys = append(rootAudioKeys, obj.Key)
			}
		}
	}

	if metadataKey == "" {
		return nil, ErrMissingMetadata
	}

	meta, err := p.loadMetadata(ctx, metadataKey)
	if err != nil {
		return nil, err
	}

	// Fall back to loose files at the submission root when the expected
	// layout wasn't followed.
	if artworkKey == "" {
		artworkKey = rootImageKey
	}
	if len(trackKeys) == 0 {
		trackKeys = rootAudioKeys
	}
	if len(trackKeys) == 0 {
		return nil, ErrNoTracksFound
	}

	logger.Info("Parsed submission",
		logger.String("submissionId", submissionID),
		logger.Int("trackFiles", len(trackKeys)),
		logger.Bool("hasArtwork", artworkKey != ""))

	return &model.ParsedSubmission{
		SubmissionID: submissionID,
		Metadata:     meta,
		ArtworkKey:   artworkKey,
		TrackKeys:    trackKeys, // already key-sorted by ListPrefix
	}, nil
}

func (p *Parser) loadMetadata(ctx context.Context, key string) (*model.SubmissionMetadata, error) {
	data, err := p.store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}

	var meta model.SubmissionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}
	return &meta, nil
}

func hasTracksSegment(rel string) bool {
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if strings.EqualFold(seg, "tracks") {
			return true
		}
	}
	return false
}
