package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DJCodeOne/freshwax-sub002/model"
)

func TestDefaultsApply(t *testing.T) {
	d := StandardDefaults()

	merged := d.Apply(model.SubmissionMetadata{
		ArtistName:     "DJ Test",
		Genre:          "Techno",
		VinylAvailable: true,
		LimitedEdition: true,
	})

	// Declared fields win.
	assert.Equal(t, "Techno", merged.Genre)
	// Unset fields fall back.
	assert.Equal(t, 9.99, merged.Price)
	assert.Equal(t, 24.99, merged.VinylPrice)
	assert.Equal(t, 100, merged.EditionSize)
	assert.Equal(t, "All rights reserved", merged.Copyright)
	assert.Equal(t, "Self-released", merged.Publisher)
}

func TestDefaultsDoNotPriceAbsentOptions(t *testing.T) {
	d := StandardDefaults()

	merged := d.Apply(model.SubmissionMetadata{ArtistName: "DJ Test"})

	// No vinyl, no limited edition: their fields stay zero.
	assert.Zero(t, merged.VinylPrice)
	assert.Zero(t, merged.EditionSize)
	// Digital price is always set.
	assert.Equal(t, 9.99, merged.Price)
}

func TestDefaultsKeepDeclaredPricing(t *testing.T) {
	d := StandardDefaults()

	merged := d.Apply(model.SubmissionMetadata{
		Price:          14.5,
		VinylAvailable: true,
		VinylPrice:     30,
		Copyright:      "(c) 2024 DJ Test",
	})

	assert.Equal(t, 14.5, merged.Price)
	assert.Equal(t, 30.0, merged.VinylPrice)
	assert.Equal(t, "(c) 2024 DJ Test", merged.Copyright)
}
