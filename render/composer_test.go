package render_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/render"
	"staticmap/tiles"
)

func TestComposeProducesExactSize(t *testing.T) {
	src := tiles.NewSolid(color.RGBA{R: 255, A: 255})
	center := tiles.NewGeoPoint(32.8968, -97.0380)

	// deliberately not a tile multiple
	m, err := render.Compose(src, center, 777, 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 777, m.Image().Bounds().Dx())
	assert.Equal(t, 500, m.Image().Bounds().Dy())
	assert.Equal(t, 10, m.Zoom())
	assert.Equal(t, tiles.DefaultTileSize, m.TileSize())
}

func TestComposeCentersTheRequestedPoint(t *testing.T) {
	src := tiles.NewSolid(color.White)
	center := tiles.NewGeoPoint(32.8968, -97.0380)
	const w, h = 640, 480

	m, err := render.Compose(src, center, w, h, 12)
	require.NoError(t, err)

	px := tiles.Project(center, m.Zoom(), m.TileSize())
	off, err := px.Offset(m.Zero())
	require.NoError(t, err)
	assert.InDelta(t, w/2, off.X, 1)
	assert.InDelta(t, h/2, off.Y, 1)
}

func TestComposeRejectsContractViolations(t *testing.T) {
	src := tiles.NewSolid(color.White)
	center := tiles.NewGeoPoint(0, 0)

	_, err := render.Compose(src, center, 100, 100, tiles.ZoomMax+1)
	assert.ErrorContains(t, err, "outside source range")

	_, err = render.Compose(src, center, 0, 100, 5)
	assert.ErrorContains(t, err, "invalid map size")

	// a 1024px map cannot fit in the 512px zoom-0 pyramid
	_, err = render.Compose(src, center, 1024, 1024, 0)
	assert.ErrorContains(t, err, "exceeds pyramid extent")

	_, err = render.ComposeRadius(src, center, -1)
	assert.ErrorContains(t, err, "invalid map radius")
}

func TestZoomForSpansTwoToThreeTiles(t *testing.T) {
	src := tiles.NewSolid(color.White)
	lat := 32.8968
	radius := 5 * render.MetersPerNauticalMile

	zoom := render.ZoomFor(radius, lat, src)
	ts := src.TileSize()
	across := 2 * radius / tiles.GroundResolution(lat, zoom, ts) / float64(ts)
	assert.GreaterOrEqual(t, across, 2.0)
	assert.Less(t, across, 4.0)

	// one zoom out no longer spans two tiles
	if zoom > tiles.ZoomMin {
		prev := 2 * radius / tiles.GroundResolution(lat, zoom-1, ts) / float64(ts)
		assert.Less(t, prev, 2.0)
	}
}

func TestComposeRadiusRedScenario(t *testing.T) {
	center := tiles.NewGeoPoint(32.8968, -97.0380)

	build := func() *image.RGBA {
		m, err := render.New().
			SolidSource(color.RGBA{R: 255, A: 255}).
			Center(center.Lat, center.Lon).
			WidthNauticalMiles(10).
			Build()
		require.NoError(t, err)
		return m.Image().(*image.RGBA)
	}

	img := build()

	// dimensions are the pixel width the radius implies at the chosen zoom
	zoom := render.ZoomFor(5*render.MetersPerNauticalMile, center.Lat, tiles.NewSolid(color.White))
	want := int(math.Round(10 * render.MetersPerNauticalMile /
		tiles.GroundResolution(center.Lat, zoom, tiles.DefaultTileSize)))
	assert.Equal(t, want, img.Bounds().Dx())
	assert.Equal(t, want, img.Bounds().Dy())

	// every pixel is pure red
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 || img.Pix[i+3] != 255 {
			t.Fatalf("pixel %d is %v, want pure red", i/4, img.Pix[i:i+4])
		}
	}

	// identical inputs give byte-identical rasters
	again := build()
	assert.Equal(t, img.Pix, again.Pix)
}
