package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"staticmap/tiles"
)

// MetersPerNauticalMile converts distance-based map widths.
const MetersPerNauticalMile = 1852.0

// Compose fetches and stitches the tiles covering width x height pixels
// around center at the given zoom, then crops so the requested center lands
// at the middle of the output. The crop is what reconciles tile-grid
// granularity with pixel-exact output.
//
// A zoom beyond the source's range, or a size exceeding the pyramid, is a
// construction-time contract violation.
func Compose(src tiles.Source, center tiles.GeoPoint, width, height, zoom int) (*Map, error) {
	if zoom < tiles.ZoomMin || zoom > src.MaxZoom() {
		return nil, fmt.Errorf("zoom %d outside source range [%d, %d]", zoom, tiles.ZoomMin, src.MaxZoom())
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid map size %dx%d", width, height)
	}
	ts := src.TileSize()
	size := tiles.MapSize(zoom, ts)
	if width > size || height > size {
		return nil, fmt.Errorf("map size %dx%d exceeds pyramid extent %d at zoom %d", width, height, size, zoom)
	}

	centerPx := tiles.Project(center, zoom, ts)
	left := clampInt(int(math.Round(centerPx.X))-width/2, 0, size-width)
	top := clampInt(int(math.Round(centerPx.Y))-height/2, 0, size-height)

	topLeft := tiles.Address{X: left / ts, Y: top / ts, Zoom: zoom}
	bottomRight := tiles.Address{X: (left + width - 1) / ts, Y: (top + height - 1) / ts, Zoom: zoom}

	stitched, err := tiles.FetchAndStitch(src, tiles.Span(topLeft, bottomRight))
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), stitched, image.Pt(left-topLeft.X*ts, top-topLeft.Y*ts), draw.Src)

	return &Map{
		img:      img,
		zoom:     zoom,
		tileSize: ts,
		zero:     tiles.PixelAt(float64(left), float64(top), zoom, ts),
		center:   center,
	}, nil
}

// ZoomFor picks the smallest zoom level at which the diameter around a
// latitude spans at least two tiles, which keeps a radius-sized map at
// roughly two to three tiles across.
func ZoomFor(radiusMeters, lat float64, src tiles.Source) int {
	ts := src.TileSize()
	for z := tiles.ZoomMin; z <= src.MaxZoom(); z++ {
		across := 2 * radiusMeters / tiles.GroundResolution(lat, z, ts) / float64(ts)
		if across >= 2 {
			return z
		}
	}
	return src.MaxZoom()
}

// ComposeRadius composes a square map whose width covers twice radiusMeters
// around center, at the zoom ZoomFor selects.
func ComposeRadius(src tiles.Source, center tiles.GeoPoint, radiusMeters float64) (*Map, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("invalid map radius %g", radiusMeters)
	}
	zoom := ZoomFor(radiusMeters, center.Lat, src)
	width := int(math.Round(2 * radiusMeters / tiles.GroundResolution(center.Lat, zoom, src.TileSize())))
	return Compose(src, center, width, width, zoom)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
