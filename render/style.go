package render

import (
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style is the brush applied to a feature when it is drawn: stroke/fill
// color, circle diameter and stroke width in pixels, fill flag, and the text
// face. It is a plain value; the builder derives new styles instead of
// mutating shared state, so features keep the brush they were added with.
type Style struct {
	Color       color.Color
	Diameter    float64
	StrokeWidth float64
	Fill        bool
	Font        font.Face
}

func DefaultStyle() Style {
	return Style{
		Color:       color.RGBA{R: 255, A: 255},
		Diameter:    10,
		StrokeWidth: 2,
		Font:        defaultFace(),
	}
}

var (
	faceOnce sync.Once
	face     font.Face
)

func defaultFace() font.Face {
	faceOnce.Do(func() {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			face = basicfont.Face7x13
			return
		}
		face, err = opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    14,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			face = basicfont.Face7x13
		}
	})
	return face
}
