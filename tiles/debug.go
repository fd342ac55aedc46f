package tiles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Debug renders a bordered tile labelled with its own address, for visually
// verifying addressing and stitching.
type Debug struct{}

func (Debug) MaxZoom() int {
	return ZoomMax
}

func (Debug) TileSize() int {
	return DefaultTileSize
}

func (Debug) Locator(Address) (string, error) {
	return "", fmt.Errorf("debug source: %w", ErrNoLocator)
}

// Label is the text drawn in the middle of a debug tile.
func (Debug) Label(addr Address) string {
	return fmt.Sprintf("x=%d, y=%d, zoom=%d", addr.X, addr.Y, addr.Zoom)
}

func (s Debug) Fetch(addr Address) (image.Image, error) {
	const ts = DefaultTileSize
	img := image.NewRGBA(image.Rect(0, 0, ts, ts))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{230, 230, 230, 255}), image.Point{}, draw.Src)

	border := image.NewUniform(color.RGBA{60, 60, 60, 255})
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, ts, 1),
		image.Rect(0, ts-1, ts, ts),
		image.Rect(0, 0, 1, ts),
		image.Rect(ts-1, 0, ts, ts),
	} {
		draw.Draw(img, r, border, image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	label := s.Label(addr)
	w := d.MeasureString(label).Round()
	d.Dot = fixed.P((ts-w)/2, ts/2)
	d.DrawString(label)
	return img, nil
}
