package catalog

import (
	"strings"

	"github.com/DJCodeOne/freshwax-sub002/model"
)

// Defaults enumerates every release field the catalog guarantees a value for.
// Submitter-declared fields win; anything unset falls back to the value here.
// Resolved once when the release document is built, not re-derived at every
// read site.
type Defaults struct {
	Genre       string
	Description string
	Price       float64
	VinylPrice  float64
	EditionSize int
	Copyright   string
	Publisher   string
}

// StandardDefaults are the engineering defaults applied to new releases.
func StandardDefaults() Defaults {
	return Defaults{
		Genre:       "Electronic",
		Description: "",
		Price:       9.99,
		VinylPrice:  24.99,
		EditionSize: 100,
		Copyright:   "All rights reserved",
		Publisher:   "Self-released",
	}
}

// Apply merges submission-declared fields with the defaults, returning a copy
// with every recognized field populated.
func (d Defaults) Apply(meta model.SubmissionMetadata) model.SubmissionMetadata {
	out := meta

	if strings.TrimSpace(out.Genre) == "" {
		out.Genre = d.Genre
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = d.Description
	}
	if out.Price <= 0 {
		out.Price = d.Price
	}
	if out.VinylAvailable && out.VinylPrice <= 0 {
		out.VinylPrice = d.VinylPrice
	}
	if out.LimitedEdition && out.EditionSize <= 0 {
		out.EditionSize = d.EditionSize
	}
	if strings.TrimSpace(out.Copyright) == "" {
		out.Copyright = d.Copyright
	}
	if strings.TrimSpace(out.Publisher) == "" {
		out.Publisher = d.Publisher
	}

	return out
}
