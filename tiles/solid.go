package tiles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Solid returns the same uniform-color tile for every address. Output never
// varies across calls or over time, which makes it the test double of choice
// for composition tests.
type Solid struct {
	Color color.Color
}

func NewSolid(c color.Color) *Solid {
	return &Solid{Color: c}
}

func (s *Solid) MaxZoom() int {
	return ZoomMax
}

func (s *Solid) TileSize() int {
	return DefaultTileSize
}

func (s *Solid) Locator(Address) (string, error) {
	return "", fmt.Errorf("solid source: %w", ErrNoLocator)
}

func (s *Solid) Fetch(Address) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, DefaultTileSize, DefaultTileSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(s.Color), image.Point{}, draw.Src)
	return img, nil
}
