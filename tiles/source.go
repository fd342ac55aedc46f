package tiles

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrNoLocator is returned by sources that synthesize tiles locally instead
// of resolving them from a remote provider.
var ErrNoLocator = errors.New("tile source has no remote locator")

// Source produces one tile image per address. Implementations are stateless
// and safe to share; caching is layered on with Cached.
type Source interface {
	// MaxZoom is the deepest zoom level the source can serve.
	MaxZoom() int
	// TileSize is the pixel edge length of every tile the source returns.
	TileSize() int
	// Locator resolves the remote URL for an address. Synthetic sources
	// fail with ErrNoLocator.
	Locator(addr Address) (string, error)
	// Fetch returns the tile image for an address.
	Fetch(addr Address) (image.Image, error)
}

// FetchAndStitch fetches every tile covering addrs and assembles them into a
// single image. The set must be non-empty and share one zoom level. Tiles
// are fetched sequentially, in tile-grid row/column order.
//
// Corner tiles are picked by index sum, which is only correct when addrs is
// an axis-aligned rectangle. The composer always passes one; do not call
// this with irregular sets.
func FetchAndStitch(src Source, addrs []Address) (image.Image, error) {
	if len(addrs) == 0 {
		return nil, errors.New("stitch: empty tile set")
	}
	zoom := addrs[0].Zoom
	for _, a := range addrs[1:] {
		if a.Zoom != zoom {
			return nil, fmt.Errorf("stitch: mixed zoom levels %d and %d", zoom, a.Zoom)
		}
	}

	topLeft, bottomRight := addrs[0], addrs[0]
	for _, a := range addrs[1:] {
		if a.X+a.Y < topLeft.X+topLeft.Y {
			topLeft = a
		}
		if a.X+a.Y > bottomRight.X+bottomRight.Y {
			bottomRight = a
		}
	}

	ts := src.TileSize()
	cols := bottomRight.X - topLeft.X + 1
	rows := bottomRight.Y - topLeft.Y + 1
	canvas := image.NewRGBA(image.Rect(0, 0, cols*ts, rows*ts))
	for _, a := range Span(topLeft, bottomRight) {
		tile, err := src.Fetch(a)
		if err != nil {
			return nil, fmt.Errorf("stitch tile %s: %w", a, err)
		}
		offX := (a.X - topLeft.X) * ts
		offY := (a.Y - topLeft.Y) * ts
		draw.Draw(canvas, image.Rect(offX, offY, offX+ts, offY+ts), tile, tile.Bounds().Min, draw.Src)
	}
	return canvas, nil
}
