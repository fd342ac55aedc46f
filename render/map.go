// Package render composes cropped map rasters from a tile source and draws
// vector annotations onto them.
package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"staticmap/tiles"
)

// Map is a composed, cropped raster together with the coordinate frame
// needed to place overlay geometry on it: the reference zoom and tile size,
// and the global pixel of the raster's top-left corner (the zero-pixel
// anchor). The frame is fixed at composition time; drawing only mutates the
// raster.
type Map struct {
	img      *image.RGBA
	zoom     int
	tileSize int
	zero     tiles.GlobalPixel
	center   tiles.GeoPoint
}

// Image returns the raster buffer.
func (m *Map) Image() image.Image {
	return m.img
}

// Zoom is the reference zoom level.
func (m *Map) Zoom() int {
	return m.zoom
}

// TileSize is the reference tile size.
func (m *Map) TileSize() int {
	return m.tileSize
}

// Zero is the zero-pixel anchor, the global pixel of the top-left corner.
func (m *Map) Zero() tiles.GlobalPixel {
	return m.zero
}

// Center is the geographic point the map was composed around.
func (m *Map) Center() tiles.GeoPoint {
	return m.center
}

// Draw renders features onto the map in order; later features paint over
// earlier ones.
func (m *Map) Draw(features ...Feature) error {
	if len(features) == 0 {
		return nil
	}
	dc := gg.NewContextForRGBA(m.img)
	for _, f := range features {
		if err := f.draw(dc, m); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile encodes the map to path; the extension picks the encoding
// (.png, .jpg or .jpeg).
func (m *Map) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write map %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, m.img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, m.img, nil)
	default:
		err = fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write map %s: %w", path, err)
	}
	return f.Close()
}
