package model

// SubmissionMetadata is the metadata.json document a submitter uploads alongside
// the audio and artwork binaries. Field names mirror the upload form.
type SubmissionMetadata struct {
	ArtistName  string `json:"artistName"`
	ReleaseName string `json:"releaseName"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	ReleaseDate string `json:"releaseDate"`
	Email       string `json:"email"`

	Price          float64 `json:"price"`
	VinylAvailable bool    `json:"vinylAvailable"`
	VinylPrice     float64 `json:"vinylPrice"`
	VinylColor     string  `json:"vinylColor"`
	LimitedEdition bool    `json:"limitedEdition"`
	EditionSize    int     `json:"editionSize"`

	Copyright string `json:"copyright"`
	Publisher string `json:"publisher"`

	SocialLinks SocialLinks     `json:"socialLinks"`
	Tracks      []TrackMetadata `json:"tracks"`
}

// SocialLinks groups the submitter's public profiles.
type SocialLinks struct {
	Website    string `json:"website,omitempty"`
	Instagram  string `json:"instagram,omitempty"`
	SoundCloud string `json:"soundcloud,omitempty"`
	Bandcamp   string `json:"bandcamp,omitempty"`
}

// TrackMetadata carries the submitter-declared fields for one track. It is
// authoritative for ordering and display and is matched to a physical audio
// file by position, not by filename.
type TrackMetadata struct {
	TrackNumber int    `json:"trackNumber"`
	Title       string `json:"title"`
	BPM         int    `json:"bpm,omitempty"`
	Key         string `json:"key,omitempty"`
	ISRC        string `json:"isrc,omitempty"`
	Featuring   string `json:"featuring,omitempty"`
	Remixer     string `json:"remixer,omitempty"`
	Explicit    bool   `json:"explicit"`
}

// ParsedSubmission is the parser's view of a submission: parsed metadata plus
// the storage keys of the binaries it classified.
type ParsedSubmission struct {
	SubmissionID string
	Metadata     *SubmissionMetadata
	ArtworkKey   string   // empty when no artwork candidate was found
	TrackKeys    []string // lexicographic storage-key order == intended track order
}
