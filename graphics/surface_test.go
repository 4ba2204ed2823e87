package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurfaceFitHalvesDisplayedSize(t *testing.T) {
	s := NewSurface(DefaultScaleFactor)

	assert.True(t, s.Fit(800, 600))
	assert.Equal(t, 400, s.Width)
	assert.Equal(t, 300, s.Height)

	assert.False(t, s.Fit(800, 600), "same displayed size must not change the surface")
	assert.Equal(t, 400, s.Width)
	assert.Equal(t, 300, s.Height)
}

func TestSurfaceFitTracksChanges(t *testing.T) {
	s := NewSurface(0)
	assert.Equal(t, DefaultScaleFactor, s.ScaleFactor)

	s.Fit(800, 600)
	assert.True(t, s.Fit(1024, 768))
	assert.Equal(t, 512, s.Width)
	assert.Equal(t, 384, s.Height)

	// Odd sizes that round to the same backing size are not a change.
	assert.False(t, s.Fit(1025, 769))
	assert.Equal(t, 1025, s.DisplayWidth)
}

func TestSurfaceEmpty(t *testing.T) {
	s := NewSurface(2)
	assert.True(t, s.Empty())
	s.Fit(1, 1)
	assert.True(t, s.Empty())
	s.Fit(2, 2)
	assert.False(t, s.Empty())
}
