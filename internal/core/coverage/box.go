package coverage

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Box is a lat/lon query rectangle. Edges are inclusive.
type Box struct {
	rect s2.Rect
}

// NewBox builds the rectangle spanned by two corners given in any order.
func NewBox(lat1, lon1, lat2, lon2 float64) Box {
	latMin, latMax := math.Min(lat1, lat2), math.Max(lat1, lat2)
	lonMin, lonMax := math.Min(lon1, lon2), math.Max(lon1, lon2)
	lo := s2.LatLngFromDegrees(latMin, lonMin)
	hi := s2.LatLngFromDegrees(latMax, lonMax)
	return Box{rect: s2.Rect{
		Lat: r1.Interval{Lo: lo.Lat.Radians(), Hi: hi.Lat.Radians()},
		Lng: s1.IntervalFromEndpoints(lo.Lng.Radians(), hi.Lng.Radians()),
	}}
}

// WorldBox contains every valid position.
func WorldBox() Box {
	return Box{rect: s2.FullRect()}
}

// Contains reports whether (lat, lon) lies inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return b.rect.ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}

// ContainsCell tests the cell's south-west corner.
func (b Box) ContainsCell(c *Cell) bool {
	return b.Contains(c.Latitude(), c.Longitude())
}

// Bounds returns the corners in degrees.
func (b Box) Bounds() (latMin, lonMin, latMax, lonMax float64) {
	return b.rect.Lo().Lat.Degrees(), b.rect.Lo().Lng.Degrees(), b.rect.Hi().Lat.Degrees(), b.rect.Hi().Lng.Degrees()
}
