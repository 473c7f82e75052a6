package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/DJCodeOne/freshwax-sub002/cache"
	"github.com/DJCodeOne/freshwax-sub002/core/artwork"
	"github.com/DJCodeOne/freshwax-sub002/core/audio"
	"github.com/DJCodeOne/freshwax-sub002/core/notify"
	"github.com/DJCodeOne/freshwax-sub002/core/submission"
	"github.com/DJCodeOne/freshwax-sub002/core/utils"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
)

// Result is the structured outcome of a successful pipeline run.
type Result struct {
	ReleaseID  string `json:"releaseId"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	TrackCount int    `json:"tracks"`
	CoverURL   string `json:"coverUrl"`
}

// Component interfaces. The orchestrator only needs the one operation of each.

type submissionParser interface {
	Parse(ctx context.Context, submissionID string) (*model.ParsedSubmission, error)
}

type artworkProcessor interface {
	Process(ctx context.Context, eng *audio.Engine, artworkKey, releaseID string) (artwork.Renditions, error)
	Placeholder() artwork.Renditions
}

type trackProcessor interface {
	ProcessTrack(ctx context.Context, eng *audio.Engine, releaseID, sourceKey string, meta model.TrackMetadata) (model.ProcessedTrack, error)
}

type catalogWriter interface {
	Write(ctx context.Context, release *model.ProcessedRelease) error
}

type sourceCleaner interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Orchestrator sequences parse, artwork, per-track transcode, catalog write,
// notification and source cleanup for one submission at a time.
type Orchestrator struct {
	parser   submissionParser
	artwork  artworkProcessor
	tracks   trackProcessor
	catalog  catalogWriter
	notifier notify.Service
	cleaner  sourceCleaner
	locker   cache.SubmissionLocker

	newEngine func() *audio.Engine
}

// NewOrchestrator wires the pipeline components together. newEngine is called
// once per invocation to acquire a fresh transcoding engine handle.
func NewOrchestrator(
	parser submissionParser,
	artworkProc artworkProcessor,
	trackProc trackProcessor,
	catalog catalogWriter,
	notifier notify.Service,
	cleaner sourceCleaner,
	locker cache.SubmissionLocker,
	newEngine func() *audio.Engine,
) *Orchestrator {
	return &Orchestrator{
		parser:    parser,
		artwork:   artworkProc,
		tracks:    trackProc,
		catalog:   catalog,
		notifier:  notifier,
		cleaner:   cleaner,
		locker:    locker,
		newEngine: newEngine,
	}
}

// Process runs the whole pipeline for one submission, synchronously. Fatal
// errors (missing metadata, no tracks, catalog write failure) abort the run,
// trigger a failure notification and leave the source objects in place for
// retry or inspection. Individual track failures degrade that track only.
// Successful completion is destructive: the submission prefix is deleted.
func (o *Orchestrator) Process(ctx context.Context, submissionID string) (*Result, error) {
	release, err := o.locker.Acquire(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger.Info("Submission received", logger.String("submissionId", submissionID))
	o.emit(func() error { return o.notifier.SubmissionReceived(ctx, submissionID) })

	// One engine per invocation, torn down on every exit path.
	eng := o.newEngine()
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("Failed to close transcoding engine", logger.ErrorField(err))
		}
	}()

	parsed, err := o.parser.Parse(ctx, submissionID)
	if err != nil {
		return nil, o.fail(ctx, submissionID, err)
	}

	meta := parsed.Metadata
	now := time.Now()
	releaseID := utils.ReleaseID(meta.ArtistName, now)

	renditions, err := o.artwork.Process(ctx, eng, parsed.ArtworkKey, releaseID)
	if err != nil {
		// Artwork trouble does not sink a submission; fall back to the
		// placeholder like a missing artwork would.
		logger.Warn("Artwork processing failed, using placeholder",
			logger.String("submissionId", submissionID),
			logger.ErrorField(err))
		renditions = o.artwork.Placeholder()
	}

	declared := declaredTracks(meta, parsed.TrackKeys)
	tracks := make([]model.ProcessedTrack, 0, len(declared))
	degraded := 0
	for i, tm := range declared {
		if i >= len(parsed.TrackKeys) {
			logger.Warn("Declared track has no audio file",
				logger.String("submissionId", submissionID),
				logger.Int("trackNumber", tm.TrackNumber))
			tracks = append(tracks, degradedTrack(tm))
			degraded++
			continue
		}

		track, err := o.tracks.ProcessTrack(ctx, eng, releaseID, parsed.TrackKeys[i], tm)
		if err != nil {
			// Per-track boundary: the failure degrades this track and never
			// aborts the rest of the submission.
			logger.Error("Track processing failed",
				logger.String("submissionId", submissionID),
				logger.Int("trackNumber", tm.TrackNumber),
				logger.String("sourceKey", parsed.TrackKeys[i]),
				logger.ErrorField(err))
			tracks = append(tracks, degradedTrack(tm))
			degraded++
			continue
		}
		tracks = append(tracks, track)
	}

	processed := &model.ProcessedRelease{
		ID:        releaseID,
		Artist:    meta.ArtistName,
		Title:     meta.ReleaseName,
		CoverURL:  renditions.CoverURL,
		ThumbURL:  renditions.ThumbURL,
		Metadata:  *meta,
		Tracks:    tracks,
		CreatedAt: now,
	}

	if err := o.catalog.Write(ctx, processed); err != nil {
		return nil, o.fail(ctx, submissionID, err)
	}

	o.emit(func() error { return o.notifier.ReleaseProcessed(ctx, processed) })

	// Destructive on success: the submission prefix is gone after this, so
	// re-processing the same id will fail fast at the parser.
	removed, err := o.cleaner.DeletePrefix(ctx, submission.Prefix(submissionID))
	if err != nil {
		logger.Error("Failed to clean up submission source",
			logger.String("submissionId", submissionID),
			logger.ErrorField(err))
	} else {
		logger.Info("Submission source cleaned up",
			logger.String("submissionId", submissionID),
			logger.Int("objectsRemoved", removed))
	}

	logger.Info("Submission processed",
		logger.String("submissionId", submissionID),
		logger.String("releaseId", releaseID),
		logger.Int("tracks", len(tracks)),
		logger.Int("degradedTracks", degraded))

	return &Result{
		ReleaseID:  releaseID,
		Artist:     processed.Artist,
		Title:      processed.Title,
		TrackCount: len(tracks),
		CoverURL:   processed.CoverURL,
	}, nil
}

// fail handles the fatal branch: attempt the failure notification, skip
// cleanup so the source stays available, and hand the error back up.
func (o *Orchestrator) fail(ctx context.Context, submissionID string, cause error) error {
	logger.Error("Submission processing failed",
		logger.String("submissionId", submissionID),
		logger.ErrorField(cause))
	o.emit(func() error { return o.notifier.ProcessingFailed(ctx, submissionID, cause) })
	return cause
}

// emit delivers a notification without letting a delivery failure reach the
// pipeline.
func (o *Orchestrator) emit(send func() error) {
	if err := send(); err != nil {
		logger.Warn("Notification delivery failed", logger.ErrorField(err))
	}
}

// declaredTracks returns the submitter-declared track metadata, synthesizing
// minimal entries from the file names when the metadata document declared
// none.
func declaredTracks(meta *model.SubmissionMetadata, trackKeys []string) []model.TrackMetadata {
	if len(meta.Tracks) > 0 {
		return meta.Tracks
	}

	synthesized := make([]model.TrackMetadata, 0, len(trackKeys))
	for i, key := range trackKeys {
		base := path.Base(key)
		title := strings.TrimSuffix(base, path.Ext(base))
		synthesized = append(synthesized, model.TrackMetadata{
			TrackNumber: i + 1,
			Title:       title,
		})
	}
	return synthesized
}

// degradedTrack keeps the declared number and title but leaves every URL
// empty, signaling a present-but-failed entry.
func degradedTrack(meta model.TrackMetadata) model.ProcessedTrack {
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
	if track.Title == "" {
		track.Title = fmt.Sprintf("Track %d", meta.TrackNumber)
	}
	return track
}
