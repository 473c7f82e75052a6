package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/core/utils"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
)

const (
	fullMP3Bitrate    = "320k"
	previewBitrate    = "192k"
	sampleRate        = "44100"
	previewLenSec     = 60
	previewOffsetSec  = 30
	previewFadeSec    = 5
	longLivedCacheHdr = "public, max-age=31536000"
)

// ErrUnsupportedFormat is returned for source files the state machine has no
// branch for. The track fails outright.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// trackStore is the slice of storage the processor needs.
type trackStore interface {
	DownloadToFile(ctx context.Context, key, path string) error
	UploadFile(ctx context.Context, key, path, contentType, cacheControl string) error
	PublicURL(key string) string
}

// Processor turns one physical audio file plus its declared metadata into a
// ProcessedTrack: full MP3 and WAV renditions plus a 60-second preview clip.
type Processor struct {
	store trackStore
}

// NewProcessor creates a track processor backed by the given object store.
func NewProcessor(store trackStore) *Processor {
	return &Processor{store: store}
}

// TrackKey builds the full-rendition storage key for a track.
func TrackKey(releaseID string, meta model.TrackMetadata, ext string) string {
	return fmt.Sprintf("releases/%s/tracks/%s%s", releaseID, utils.TrackBaseName(meta.TrackNumber, meta.Title), ext)
}

// PreviewKey builds the preview-clip storage key for a track.
func PreviewKey(releaseID string, meta model.TrackMetadata) string {
	return fmt.Sprintf("releases/%s/previews/%02d-preview.mp3", releaseID, meta.TrackNumber)
}

// ProcessTrack runs the per-track state machine keyed by the detected source
// extension:
//
//	wav        -> keep WAV, derive MP3
//	mp3        -> keep MP3, derive WAV
//	flac/aiff  -> derive both from the lossless source
//	anything else fails with ErrUnsupportedFormat
//
// A preview clip is always derived from the MP3 rendition. The engine is
// shared across tracks; the caller owns its lifecycle.
func (p *Processor) ProcessTrack(ctx context.Context, eng *Engine, releaseID, sourceKey string, meta model.TrackMetadata) (model.ProcessedTrack, error) {
	track := model.ProcessedTrack{
		TrackNumber: meta.TrackNumber,
		Title:       meta.Title,
		BPM:         meta.BPM,
		Key:         meta.Key,
		ISRC:        meta.ISRC,
		Featuring:   meta.Featuring,
		Remixer:     meta.Remixer,
		Explicit:    meta.Explicit,
	}

	ext := strings.ToLower(path.Ext(sourceKey))

	workDir, err := eng.WorkDir()
	if err != nil {
		return track, err
	}
	dir, err := os.MkdirTemp(workDir, "track-")
	if err != nil {
		return track, fmt.Errorf("failed to create track work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	sourcePath := filepath.Join(dir, "source"+ext)
	if err := p.store.DownloadToFile(ctx, sourceKey, sourcePath); err != nil {
		return track, err
	}

	mp3Path := filepath.Join(dir, "full.mp3")
	wavPath := filepath.Join(dir, "full.wav")

	switch ext {
	case ".wav":
		wavPath = sourcePath
		if err := eng.Run(ctx, mp3Args(sourcePath, mp3Path)...); err != nil {
			return track, err
		}
	case ".mp3":
		mp3Path = sourcePath
		if err := eng.Run(ctx, wavArgs(sourcePath, wavPath)...); err != nil {
			return track, err
		}
	case ".flac", ".aiff", ".aif":
		if err := eng.Run(ctx, mp3Args(sourcePath, mp3Path)...); err != nil {
			return track, err
		}
		if err := eng.Run(ctx, wavArgs(sourcePath, wavPath)...); err != nil {
			return track, err
		}
	default:
		return track, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	duration, err := eng.Duration(ctx, mp3Path)
	if err != nil {
		return track, err
	}

	previewPath := filepath.Join(dir, "preview.mp3")
	start, clipLen := PreviewWindow(duration)
	if err := eng.Run(ctx, previewArgs(mp3Path, previewPath, start, clipLen)...); err != nil {
		return track, err
	}

	mp3Key := TrackKey(releaseID, meta, ".mp3")
	wavKey := TrackKey(releaseID, meta, ".wav")
	previewKey := PreviewKey(releaseID, meta)

	if err := p.store.UploadFile(ctx, mp3Key, mp3Path, "audio/mpeg", longLivedCacheHdr); err != nil {
		return track, err
	}
	if err := p.store.UploadFile(ctx, wavKey, wavPath, "audio/wav", longLivedCacheHdr); err != nil {
		return track, err
	}
	if err := p.store.UploadFile(ctx, previewKey, previewPath, "audio/mpeg", longLivedCacheHdr); err != nil {
		return track, err
	}

	track.MP3URL = p.store.PublicURL(mp3Key)
	track.WAVURL = p.store.PublicURL(wavKey)
	track.PreviewURL = p.store.PublicURL(previewKey)
	track.Duration = duration

	logger.Info("Processed track",
		logger.String("releaseId", releaseID),
		logger.Int("trackNumber", meta.TrackNumber),
		logger.String("sourceExt", ext),
		logger.Float64("duration", duration))
	return track, nil
}

// PreviewWindow decides where the preview clip starts and how long it runs.
// The clip starts at the 30-second mark to skip typical intros; sources too
// short for a full 60-second clip after that offset start at 0 instead.
func PreviewWindow(duration float64) (start, clipLen float64) {
	start = previewOffsetSec
	if duration < previewOffsetSec+previewLenSec {
		start = 0
	}
	clipLen = previewLenSec
	if remaining := duration - start; remaining > 0 && remaining < clipLen {
		clipLen = remaining
	}
	return start, clipLen
}

// mp3Args derives the full-quality MP3 rendition: constant 320 kbps, 44.1 kHz.
func mp3Args(inputFile, outputFile string) []string {
	return []string{
		"-y",
		"-i", inputFile,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", fullMP3Bitrate,
		"-ar", sampleRate,
		"-map_metadata", "-1",
		outputFile,
	}
}

// wavArgs derives the WAV rendition: PCM 16-bit, 44.1 kHz.
func wavArgs(inputFile, outputFile string) []string {
	return []string{
		"-y",
		"-i", inputFile,
		"-vn",
		"-c:a", "pcm_s16le",
		"-ar", sampleRate,
		"-map_metadata", "-1",
		outputFile,
	}
}

// previewArgs cuts the preview clip from the MP3 rendition with a linear
// fade-out over the last seconds of the clip, encoded at a lower bitrate.
func previewArgs(inputFile, outputFile string, start, clipLen float64) []string {
	fadeStart := clipLen - previewFadeSec
	if fadeStart < 0 {
		fadeStart = 0
	}
	return []string{
		"-y",
		"-ss", fmt.Sprintf("%g", start),
		"-i", inputFile,
		"-t", fmt.Sprintf("%g", clipLen),
		"-af", fmt.Sprintf("afade=t=out:st=%g:d=%d", fadeStart, previewFadeSec),
		"-c:a", "libmp3lame",
		"-b:a", previewBitrate,
		"-ar", sampleRate,
		outputFile,
	}
}
