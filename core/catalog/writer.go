package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
	"github.com/DJCodeOne/freshwax-sub002/repository"
)

// Writer assembles and persists the release document and maintains the
// denormalized catalog index.
type Writer struct {
	repo     repository.ReleaseRepository
	defaults Defaults
}

// NewWriter creates a catalog writer.
func NewWriter(repo repository.ReleaseRepository, defaults Defaults) *Writer {
	return &Writer{repo: repo, defaults: defaults}
}

// Write upserts the release document (idempotent by release id) and then
// read-modify-writes the index: an existing summary with the same id is
// replaced, otherwise a new one is appended. The index update has no
// transactional guarantee; concurrent writers can race and the last write
// wins. Known limitation, left as is.
func (w *Writer) Write(ctx context.Context, release *model.ProcessedRelease) error {
	doc := w.buildDocument(release)

	if err := w.repo.UpsertRelease(ctx, doc); err != nil {
		return fmt.Errorf("catalog write failed: %w", err)
	}

	if err := w.updateIndex(ctx, doc); err != nil {
		return fmt.Errorf("catalog index update failed: %w", err)
	}

	return nil
}

// buildDocument flattens the processed release into the catalog storage shape,
// filling unset fields from the defaults. New documents always start pending
// and unpublished; lifecycle mutations belong to the approval workflow.
func (w *Writer) buildDocument(release *model.ProcessedRelease) *model.Release {
	meta := w.defaults.Apply(release.Metadata)

	return &model.Release{
		ID:          release.ID,
		Artist:      release.Artist,
		Title:       release.Title,
		Genre:       meta.Genre,
		Description: meta.Description,
		ReleaseDate: meta.ReleaseDate,

		CoverURL: release.CoverURL,
		ThumbURL: release.ThumbURL,

		Tracks: model.ProcessedTrackList(release.Tracks),

		Price:          meta.Price,
		VinylAvailable: meta.VinylAvailable,
		VinylPrice:     meta.VinylPrice,
		VinylColor:     meta.VinylColor,
		LimitedEdition: meta.LimitedEdition,
		EditionSize:    meta.EditionSize,

		Copyright: meta.Copyright,
		Publisher: meta.Publisher,

		Website:    meta.SocialLinks.Website,
		Instagram:  meta.SocialLinks.Instagram,
		SoundCloud: meta.SocialLinks.SoundCloud,
		Bandcamp:   meta.SocialLinks.Bandcamp,

		ContactEmail: meta.Email,

		Status:    model.StatusPending,
		Published: false,
		Approved:  false,

		CreatedAt: release.CreatedAt,
		UpdatedAt: time.Now(),
	}
}

func (w *Writer) updateIndex(ctx context.Context, doc *model.Release) error {
	index, err := w.repo.GetIndex(ctx)
	if err != nil {
		return err
	}

	summary := model.ReleaseSummary{
		ID:         doc.ID,
		Artist:     doc.Artist,
		Title:      doc.Title,
		Genre:      doc.Genre,
		ThumbURL:   doc.ThumbURL,
		TrackCount: len(doc.Tracks),
		Status:     doc.Status,
		CreatedAt:  doc.CreatedAt,
	}

	replaced := false
	for i, entry := range index.Entries {
		if entry.ID == summary.ID {
			index.Entries[i] = summary
			replaced = true
			break
		}
	}
	if !replaced {
		index.Entries = append(index.Entries, summary)
	}

	index.TotalReleases = len(index.Entries)
	index.LastUpdated = time.Now()

	if err := w.repo.SaveIndex(ctx, index); err != nil {
		return err
	}

	logger.Info("Catalog index updated",
		logger.String("releaseId", doc.ID),
		logger.Bool("replacedExisting", replaced),
		logger.Int("totalReleases", index.TotalReleases))
	return nil
}
