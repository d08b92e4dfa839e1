package ui

import (
	"math"
	"sort"

	"fyne.io/fyne/v2"

	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/domain"
)

const (
	mapTileSize         = 256
	mapMaxLatitudeMerc  = 85.05112878
	mapOutlierThreshold = 3.5
)

type mapCoordinate struct {
	Latitude  float64
	Longitude float64
}

// mapViewportState mirrors the tile offset kept by the xwidget map, which
// does not expose it.
type mapViewportState struct {
	Zoom int
	X    int
	Y    int
}

func (s *mapViewportState) PanEast() {
	s.X++
}

func (s *mapViewportState) PanWest() {
	s.X--
}

func (s *mapViewportState) PanNorth() {
	s.Y--
}

func (s *mapViewportState) PanSouth() {
	s.Y++
}

func (s *mapViewportState) ZoomIn() {
	if s.Zoom >= config.MaxMapZoom {
		return
	}
	s.Zoom++
	s.X *= 2
	s.Y *= 2
}

func (s *mapViewportState) ZoomOut() {
	if s.Zoom <= 0 {
		return
	}
	s.X /= 2
	s.Y /= 2
	s.Zoom--
}

func clampZoom(zoom int) int {
	return max(0, min(config.MaxMapZoom, zoom))
}

func markerCoordinate(marker domain.Marker) (mapCoordinate, bool) {
	if !marker.HasValidPosition() {
		return mapCoordinate{}, false
	}

	return mapCoordinate{Latitude: marker.Latitude, Longitude: marker.Longitude}, true
}

// chooseMapCenter prefers the focused marker and otherwise centers on the
// densest cluster, ignoring far outliers.
func chooseMapCenter(markers []domain.Marker, focusID string) (mapCoordinate, bool) {
	points := make([]mapCoordinate, 0, len(markers))
	for _, marker := range markers {
		coord, ok := markerCoordinate(marker)
		if !ok {
			continue
		}
		if focusID != "" && marker.ID == focusID {
			return coord, true
		}
		points = append(points, coord)
	}

	return robustClusterCenter(points)
}

func robustClusterCenter(points []mapCoordinate) (mapCoordinate, bool) {
	if len(points) == 0 {
		return mapCoordinate{}, false
	}
	center := medianCoordinate(points)
	if len(points) < 4 {
		return center, true
	}

	distances := make([]float64, len(points))
	for i, point := range points {
		distances[i] = haversineKilometers(center, point)
	}
	distMedian := median(distances)
	deviations := make([]float64, len(distances))
	for i, d := range distances {
		deviations[i] = math.Abs(d - distMedian)
	}
	mad := median(deviations)
	if mad <= 0 {
		return center, true
	}

	limit := distMedian + mapOutlierThreshold*mad
	kept := points[:0:0]
	for i, point := range points {
		if distances[i] <= limit {
			kept = append(kept, point)
		}
	}
	if len(kept) == 0 {
		return center, true
	}

	return medianCoordinate(kept), true
}

func medianCoordinate(points []mapCoordinate) mapCoordinate {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Latitude
		lons[i] = p.Longitude
	}

	return mapCoordinate{Latitude: median(lats), Longitude: median(lons)}
}

func centerCoordinateToViewport(center mapCoordinate, zoom int) mapViewportState {
	zoom = clampZoom(zoom)
	tileX, tileY := latLonToTile(center, zoom)
	bias := 1.0
	if zoom == 0 {
		bias = 0.5
	}
	offset := mapTileOffset(zoom)

	return mapViewportState{
		Zoom: zoom,
		X:    int(math.Round(tileX-bias)) - offset,
		Y:    int(math.Round(tileY-bias)) - offset,
	}
}

// projectCoordinateToScreen maps coord into map widget pixels using the same
// tile layout as the xwidget map renderer.
func projectCoordinateToScreen(coord mapCoordinate, view mapViewportState, canvasSize fyne.Size) (fyne.Position, bool) {
	if canvasSize.Width <= 0 || canvasSize.Height <= 0 {
		return fyne.Position{}, false
	}

	originX := (int(canvasSize.Width) - mapTileSize*2) / 2
	originY := (int(canvasSize.Height) - mapTileSize*2) / 2
	if view.Zoom == 0 {
		originX += mapTileSize / 2
		originY += mapTileSize / 2
	}
	offset := mapTileOffset(view.Zoom)
	tileX, tileY := latLonToTile(coord, view.Zoom)

	x := float64(originX) + (tileX-float64(view.X+offset))*mapTileSize
	y := float64(originY) + (tileY-float64(view.Y+offset))*mapTileSize

	return fyne.NewPos(float32(x), float32(y)), true
}

func mapTileOffset(zoom int) int {
	count := 1 << max(0, zoom)

	return int(float32(count)/2 - 0.5)
}

func latLonToTile(coord mapCoordinate, zoom int) (float64, float64) {
	n := math.Exp2(float64(zoom))
	lat := max(-mapMaxLatitudeMerc, min(mapMaxLatitudeMerc, coord.Latitude))
	latRad := lat * math.Pi / 180

	x := (coord.Longitude + 180.0) / 360.0 * n
	y := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n

	return x, y
}

func haversineKilometers(a, b mapCoordinate) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLon := math.Sin((b.Longitude - a.Longitude) * math.Pi / 360)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}
