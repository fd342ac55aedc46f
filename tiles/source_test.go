package tiles_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/tiles"
)

func TestSolidSourceIsDeterministic(t *testing.T) {
	src := tiles.NewSolid(color.RGBA{R: 255, A: 255})
	addr := tiles.Address{X: 1, Y: 2, Zoom: 3}

	first, err := src.Fetch(addr)
	require.NoError(t, err)
	second, err := src.Fetch(tiles.Address{X: 9, Y: 9, Zoom: 9})
	require.NoError(t, err)

	a := first.(*image.RGBA)
	b := second.(*image.RGBA)
	assert.Equal(t, a.Bounds(), b.Bounds())
	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, tiles.DefaultTileSize, a.Bounds().Dx())

	r, g, bl, al := first.At(100, 100).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, bl)
	assert.Equal(t, uint32(0xffff), al)
}

func TestSyntheticSourcesHaveNoLocator(t *testing.T) {
	addr := tiles.Address{X: 1, Y: 1, Zoom: 1}

	_, err := tiles.NewSolid(color.White).Locator(addr)
	assert.ErrorIs(t, err, tiles.ErrNoLocator)

	_, err = tiles.Debug{}.Locator(addr)
	assert.ErrorIs(t, err, tiles.ErrNoLocator)
}

func TestDebugTileLabelsItsAddress(t *testing.T) {
	src := tiles.Debug{}
	addr := tiles.Address{X: 943, Y: 1651, Zoom: 12}

	label := src.Label(addr)
	assert.Contains(t, label, "x=943")
	assert.Contains(t, label, "y=1651")
	assert.Contains(t, label, "zoom=12")

	img, err := src.Fetch(addr)
	require.NoError(t, err)
	assert.Equal(t, tiles.DefaultTileSize, img.Bounds().Dx())
	assert.Equal(t, tiles.DefaultTileSize, img.Bounds().Dy())

	// the label is drawn in black somewhere around the middle band
	found := false
	for y := tiles.DefaultTileSize/2 - 20; y < tiles.DefaultTileSize/2+20 && !found; y++ {
		for x := 0; x < tiles.DefaultTileSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "no label pixels drawn")
}

func TestFetchAndStitchAssemblesGrid(t *testing.T) {
	src := tiles.NewSolid(color.RGBA{G: 255, A: 255})
	addrs := tiles.Span(tiles.Address{X: 4, Y: 10, Zoom: 6}, tiles.Address{X: 6, Y: 11, Zoom: 6})

	img, err := tiles.FetchAndStitch(src, addrs)
	require.NoError(t, err)
	assert.Equal(t, 3*tiles.DefaultTileSize, img.Bounds().Dx())
	assert.Equal(t, 2*tiles.DefaultTileSize, img.Bounds().Dy())

	r, g, _, _ := img.At(1000, 700).RGBA()
	assert.Zero(t, r)
	assert.Equal(t, uint32(0xffff), g)
}

func TestFetchAndStitchRejectsBadSets(t *testing.T) {
	src := tiles.NewSolid(color.White)

	_, err := tiles.FetchAndStitch(src, nil)
	assert.Error(t, err)

	_, err = tiles.FetchAndStitch(src, []tiles.Address{
		{X: 1, Y: 1, Zoom: 4},
		{X: 1, Y: 1, Zoom: 5},
	})
	assert.ErrorContains(t, err, "mixed zoom")
}

func TestFetchAndStitchSingleTile(t *testing.T) {
	src := tiles.Debug{}
	img, err := tiles.FetchAndStitch(src, []tiles.Address{{X: 2, Y: 3, Zoom: 4}})
	require.NoError(t, err)
	assert.Equal(t, tiles.DefaultTileSize, img.Bounds().Dx())
	assert.Equal(t, tiles.DefaultTileSize, img.Bounds().Dy())
}
