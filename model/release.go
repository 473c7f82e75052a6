package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProcessedTrack is the derived record for one track. TrackNumber and Title are
// always set, even when transcoding failed; the URL fields are empty strings on
// failure so a degraded entry is still present in the release.
type ProcessedTrack struct {
	TrackNumber int    `json:"trackNumber"`
	Title       string `json:"title"`
	BPM         int    `json:"bpm,omitempty"`
	Key         string `json:"key,omitempty"`
	ISRC        string `json:"isrc,omitempty"`
	Featuring   string `json:"featuring,omitempty"`
	Remixer     string `json:"remixer,omitempty"`
	Explicit    bool   `json:"explicit"`

	MP3URL     string  `json:"mp3Url"`
	WAVURL     string  `json:"wavUrl"`
	PreviewURL string  `json:"previewUrl"`
	Duration   float64 `json:"duration"` // seconds, 0 when transcoding failed
}

// Degraded reports whether this entry lost its media during processing.
func (t ProcessedTrack) Degraded() bool {
	return t.MP3URL == "" && t.WAVURL == "" && t.PreviewURL == ""
}

// ProcessedRelease aggregates release-level metadata with the full ordered
// track list. ID is the primary key for all downstream storage.
type ProcessedRelease struct {
	ID        string             `json:"id"`
	Artist    string             `json:"artist"`
	Title     string             `json:"title"`
	CoverURL  string             `json:"coverUrl"`
	ThumbURL  string             `json:"thumbUrl"`
	Metadata  SubmissionMetadata `json:"metadata"`
	Tracks    []ProcessedTrack   `json:"tracks"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ProcessedTrackList stores the track list as a JSON column under GORM.
type ProcessedTrackList []ProcessedTrack

// Scan implements sql.Scanner.
func (l *ProcessedTrackList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ProcessedTrackList: %T", value)
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer.
func (l ProcessedTrackList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Release lifecycle states. The pipeline only ever writes StatusPending;
// approval and publishing belong to the storefront admin workflow.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusPublish  = "published"
)

// Release is the persisted release document. Written once by the pipeline on
// creation; all later mutations (approval, publish flag, play counts, ratings)
// belong to the external storefront and admin subsystems.
type Release struct {
	ID          string `json:"id" gorm:"primaryKey;size:128"`
	Artist      string `json:"artist" gorm:"size:255;not null"`
	Title       string `json:"title" gorm:"size:255;not null"`
	Genre       string `json:"genre" gorm:"size:100"`
	Description string `json:"description" gorm:"type:text"`
	ReleaseDate string `json:"releaseDate" gorm:"size:32"`

	CoverURL string `json:"coverUrl" gorm:"size:512"`
	ThumbURL string `json:"thumbUrl" gorm:"size:512"`

	Tracks ProcessedTrackList `json:"tracks" gorm:"type:json"`

	Price          float64 `json:"price"`
	VinylAvailable bool    `json:"vinylAvailable"`
	VinylPrice     float64 `json:"vinylPrice"`
	VinylColor     string  `json:"vinylColor" gorm:"size:100"`
	LimitedEdition bool    `json:"limitedEdition"`
	EditionSize    int     `json:"editionSize"`

	Copyright string `json:"copyright" gorm:"size:255"`
	Publisher string `json:"publisher" gorm:"size:255"`

	Website    string `json:"website" gorm:"size:255"`
	Instagram  string `json:"instagram" gorm:"size:255"`
	SoundCloud string `json:"soundcloud" gorm:"size:255"`
	Bandcamp   string `json:"bandcamp" gorm:"size:255"`

	ContactEmail string `json:"contactEmail" gorm:"size:255"`

	Status    string `json:"status" gorm:"size:20;default:'pending';index"`
	Published bool   `json:"published" gorm:"default:false"`
	Approved  bool   `json:"approved" gorm:"default:false"`

	PlayCount int     `json:"playCount" gorm:"default:0"`
	Rating    float64 `json:"rating" gorm:"default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name.
func (Release) TableName() string {
	return "releases"
}

// ReleaseSummary is the lightweight index entry used for cheap listing scans.
type ReleaseSummary struct {
	ID         string    `json:"id"`
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	Genre      string    `json:"genre"`
	ThumbURL   string    `json:"thumbUrl"`
	TrackCount int       `json:"trackCount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReleaseSummaryList stores index entries as a JSON column under GORM.
type ReleaseSummaryList []ReleaseSummary

// Scan implements sql.Scanner.
func (l *ReleaseSummaryList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ReleaseSummaryList: %T", value)
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer.
func (l ReleaseSummaryList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// CatalogIndex is the single denormalized document holding summaries of every
// release. It is maintained by read-modify-write on each new release with no
// per-entry concurrency control; concurrent writers race and the last write
// wins. Known limitation.
type CatalogIndex struct {
	ID            int                `json:"-" gorm:"primaryKey"` // always 1
	Entries       ReleaseSummaryList `json:"releases" gorm:"type:json"`
	TotalReleases int                `json:"totalReleases"`
	LastUpdated   time.Time          `json:"lastUpdated"`
}

// TableName pins the table name.
func (CatalogIndex) TableName() string {
	return "catalog_index"
}
