package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox_Contains(t *testing.T) {
	b := NewBox(56, 13, 55, 12)

	assert.True(t, b.Contains(55.5, 12.5))
	assert.True(t, b.Contains(55, 12), "edges are inclusive")
	assert.False(t, b.Contains(54.9, 12.5))
	assert.False(t, b.Contains(55.5, 13.1))

	latMin, lonMin, latMax, lonMax := b.Bounds()
	assert.InDelta(t, 55, latMin, 1e-9)
	assert.InDelta(t, 12, lonMin, 1e-9)
	assert.InDelta(t, 56, latMax, 1e-9)
	assert.InDelta(t, 13, lonMax, 1e-9)
}

func TestBox_ContainsCell(t *testing.T) {
	b := NewBox(55, 12, 56, 13)
	assert.True(t, b.ContainsCell(NewCell("in", 55.5, 12.5)))
	assert.False(t, b.ContainsCell(NewCell("out", 57, 12.5)))
}

func TestWorldBox(t *testing.T) {
	w := WorldBox()
	assert.True(t, w.Contains(89.9, 179.9))
	assert.True(t, w.Contains(-89.9, -179.9))
}
