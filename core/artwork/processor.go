package artwork

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/core/audio"
	"github.com/DJCodeOne/freshwax-sub002/logger"
)

const (
	coverSize = 800
	thumbSize = 400

	cacheControl = "public, max-age=31536000"
)

// Renditions holds the public URLs of the two artwork renditions.
type Renditions struct {
	CoverURL string
	ThumbURL string
}

// artStore is the slice of storage the artwork processor needs.
type artStore interface {
	DownloadToFile(ctx context.Context, key, path string) error
	UploadFile(ctx context.Context, key, path, contentType, cacheControl string) error
	PublicURL(key string) string
}

// Processor turns submitted artwork into two square WebP renditions: a
// centered square crop resized to 800 (cover) and 400 (thumbnail). ffmpeg does
// the crop, Lanczos resample and WebP encode in a single pass per rendition.
type Processor struct {
	store          artStore
	placeholderURL string
}

// NewProcessor creates an artwork processor. placeholderURL is substituted for
// both renditions when a submission carries no artwork.
func NewProcessor(store artStore, placeholderURL string) *Processor {
	return &Processor{store: store, placeholderURL: placeholderURL}
}

// Placeholder returns the renditions substituted when no artwork is usable.
func (p *Processor) Placeholder() Renditions {
	return Renditions{CoverURL: p.placeholderURL, ThumbURL: p.placeholderURL}
}

// CoverKey builds the cover rendition storage key for a release.
func CoverKey(releaseID string) string {
	return fmt.Sprintf("releases/%s/artwork/cover.webp", releaseID)
}

// ThumbKey builds the thumbnail rendition storage key for a release.
func ThumbKey(releaseID string) string {
	return fmt.Sprintf("releases/%s/artwork/thumb.webp", releaseID)
}

// Process downloads the artwork, produces both renditions and uploads them.
// An empty artworkKey is not an error: the placeholder URL stands in for both
// renditions.
func (p *Processor) Process(ctx context.Context, eng *audio.Engine, artworkKey, releaseID string) (Renditions, error) {
	if artworkKey == "" {
		logger.Info("No artwork in submission, using placeholder",
			logger.String("releaseId", releaseID))
		return Renditions{CoverURL: p.placeholderURL, ThumbURL: p.placeholderURL}, nil
	}

	workDir, err := eng.WorkDir()
	if err != nil {
		return Renditions{}, err
	}
	dir, err := os.MkdirTemp(workDir, "artwork-")
	if err != nil {
		return Renditions{}, fmt.Errorf("failed to create artwork work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	ext := strings.ToLower(path.Ext(artworkKey))
	sourcePath := filepath.Join(dir, "artwork"+ext)
	if err := p.store.DownloadToFile(ctx, artworkKey, sourcePath); err != nil {
		return Renditions{}, err
	}

	coverPath := filepath.Join(dir, "cover.webp")
	thumbPath := filepath.Join(dir, "thumb.webp")

	if err := eng.Run(ctx, renditionArgs(sourcePath, coverPath, coverSize)...); err != nil {
		return Renditions{}, fmt.Errorf("failed to render cover: %w", err)
	}
	if err := eng.Run(ctx, renditionArgs(sourcePath, thumbPath, thumbSize)...); err != nil {
		return Renditions{}, fmt.Errorf("failed to render thumbnail: %w", err)
	}

	coverKey := CoverKey(releaseID)
	thumbKey := ThumbKey(releaseID)
	if err := p.store.UploadFile(ctx, coverKey, coverPath, "image/webp", cacheControl); err != nil {
		return Renditions{}, err
	}
	if err := p.store.UploadFile(ctx, thumbKey, thumbPath, "image/webp", cacheControl); err != nil {
		return Renditions{}, err
	}

	logger.Info("Processed artwork",
		logger.String("releaseId", releaseID),
		logger.String("source", artworkKey))
	return Renditions{
		CoverURL: p.store.PublicURL(coverKey),
		ThumbURL: p.store.PublicURL(thumbKey),
	}, nil
}

// renditionArgs builds the single-pass crop/scale/encode command. The crop
// side is min(width, height) and the crop filter centers on the long axis by
// default.
func renditionArgs(inputFile, outputFile string, size int) []string {
	vf := fmt.Sprintf("crop='min(iw,ih)':'min(iw,ih)',scale=%d:%d:flags=lanczos", size, size)
	return []string{
		"-y",
		"-i", inputFile,
		"-vf", vf,
		"-frames:v", "1",
		"-c:v", "libwebp",
		"-quality", "90",
		outputFile,
	}
}
