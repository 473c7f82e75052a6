package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
)

// catalogIndexID is the primary key of the single catalog index row.
const catalogIndexID = 1

// ReleaseRepository defines the catalog persistence operations the pipeline
// performs. It only ever creates documents; approval and publishing mutations
// happen elsewhere.
type ReleaseRepository interface {
	UpsertRelease(ctx context.Context, release *model.Release) error
	GetReleaseByID(ctx context.Context, id string) (*model.Release, error)
	GetIndex(ctx context.Context) (*model.CatalogIndex, error)
	SaveIndex(ctx context.Context, index *model.CatalogIndex) error
}

// gormReleaseRepository implements ReleaseRepository on GORM/MySQL.
type gormReleaseRepository struct {
	db *gorm.DB
}

// NewGormReleaseRepository creates a new instance of gormReleaseRepository.
func NewGormReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &gormReleaseRepository{db: db}
}

// UpsertRelease writes the release document keyed by release id. Re-running
// for the same id overwrites the existing document instead of duplicating it.
func (r *gormReleaseRepository) UpsertRelease(ctx context.Context, release *model.Release) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(release).Error
	if err != nil {
		return fmt.Errorf("failed to upsert release %s: %w", release.ID, err)
	}

	logger.Info("Release document written",
		logger.String("releaseId", release.ID),
		logger.String("artist", release.Artist),
		logger.Int("tracks", len(release.Tracks)))
	return nil
}

// GetReleaseByID retrieves a release document, or nil when absent.
func (r *gormReleaseRepository) GetReleaseByID(ctx context.Context, id string) (*model.Release, error) {
	var release model.Release
	err := r.db.WithContext(ctx).First(&release, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load release %s: %w", id, err)
	}
	return &release, nil
}

// GetIndex fetches the catalog index document, returning an empty index when
// none has been written yet.
func (r *gormReleaseRepository) GetIndex(ctx context.Context) (*model.CatalogIndex, error) {
	var index model.CatalogIndex
	err := r.db.WithContext(ctx).First(&index, "id = ?", catalogIndexID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.CatalogIndex{ID: catalogIndexID}, nil
		}
		return nil, fmt.Errorf("failed to load catalog index: %w", err)
	}
	return &index, nil
}

// SaveIndex writes the whole index document back. This is the write half of an
// unguarded read-modify-write; concurrent writers race and the last write
// wins.
func (r *gormReleaseRepository) SaveIndex(ctx context.Context, index *model.CatalogIndex) error {
	index.ID = catalogIndexID
	if err := r.db.WithContext(ctx).Save(index).Error; err != nil {
		return fmt.Errorf("failed to save catalog index: %w", err)
	}
	return nil
}
