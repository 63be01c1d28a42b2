package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name    string      `xml:"name"`
	Open    int         `xml:"open"`
	Styles  []kmlStyle  `xml:"Style"`
	Folders []kmlFolder `xml:"Folder"`
}

type kmlStyle struct {
	ID        string `xml:"id,attr"`
	LineColor string `xml:"LineStyle>color"`
	PolyColor string `xml:"PolyStyle>color"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Open       int            `xml:"open"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name     string     `xml:"name"`
	StyleURL string     `xml:"styleUrl"`
	Polygon  kmlPolygon `xml:"Polygon"`
}

type kmlPolygon struct {
	AltitudeMode string `xml:"altitudeMode"`
	Tessellate   int    `xml:"tessellate"`
	Coordinates  string `xml:"outerBoundaryIs>LinearRing>coordinates"`
}

const (
	styleGreen  = "greenStyle"
	styleOrange = "orangeStyle"
	styleRed    = "redStyle"
)

var kmlStyles = []kmlStyle{
	{ID: styleRed, LineColor: "ff0000ff", PolyColor: "ff0000ff"},
	{ID: styleOrange, LineColor: "ff00aaff", PolyColor: "ff00aaff"},
	{ID: styleGreen, LineColor: "ff00ff00", PolyColor: "ff00ff55"},
}

// WriteKML writes one folder per source and one extruded polygon per cell,
// colored by dataType's thresholds.
func WriteKML(w io.Writer, sources []*coverage.Source, latSize, lonSize float64, factor int, dataType ExportDataType) error {
	if factor < 1 {
		factor = 1
	}
	cellLat := latSize * float64(factor)
	cellLon := lonSize * float64(factor)

	doc := kmlRoot{Document: kmlDocument{
		Name:   "AIS Coverage",
		Open:   1,
		Styles: kmlStyles,
	}}

	for _, src := range sources {
		folder := kmlFolder{Name: src.Identifier()}
		for _, cell := range sortedCells(src) {
			style, height := classify(cell, dataType)
			folder.Placemarks = append(folder.Placemarks, kmlPlacemark{
				Name:     cell.ID(),
				StyleURL: "#" + style,
				Polygon: kmlPolygon{
					AltitudeMode: "relativeToGround",
					Tessellate:   1,
					Coordinates:  ring(cell.Latitude(), cell.Longitude(), cellLat, cellLon, height),
				},
			})
		}
		doc.Document.Folders = append(doc.Document.Folders, folder)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write kml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode kml: %w", err)
	}
	return enc.Flush()
}

func classify(cell *coverage.Cell, dataType ExportDataType) (string, int) {
	value := cell.Coverage()
	if dataType == SignalStrength {
		value = float64(cell.AverageSignalStrength())
	}
	switch {
	case value > dataType.GreenThreshold():
		return styleGreen, 300
	case value > dataType.RedThreshold():
		return styleOrange, 200
	default:
		return styleRed, 100
	}
}

// ring lists the four corners as lon,lat,height counter-clockwise from south-west.
func ring(lat, lon, latSize, lonSize float64, height int) string {
	h := strconv.Itoa(height)
	corners := [][2]float64{
		{lon, lat},
		{lon + lonSize, lat},
		{lon + lonSize, lat + latSize},
		{lon, lat + latSize},
	}
	parts := make([]string, len(corners))
	for i, c := range corners {
		parts[i] = formatFloat(c[0]) + "," + formatFloat(c[1]) + "," + h
	}
	return strings.Join(parts, " ")
}
