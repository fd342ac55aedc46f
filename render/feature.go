package render

import (
	"errors"
	"image"

	"github.com/fogleman/gg"

	"staticmap/tiles"
)

// Feature is one drawable vector annotation. The variant set is closed:
// Circle, Line, Rect, Polygon, Path, Text, TextOffset and Group are all
// there is, and drawing handles each exhaustively. Every variant carries its
// geometry in GeoPoint space and converts it against the map's zero-pixel
// anchor when drawn.
type Feature interface {
	draw(dc *gg.Context, m *Map) error
}

// FeatureSet is an ordered sequence of features; z-order is insertion order.
type FeatureSet []Feature

// localPoint projects p into the map's pixel frame.
func localPoint(m *Map, p tiles.GeoPoint) (image.Point, error) {
	return tiles.Project(p, m.zoom, m.tileSize).Offset(m.zero)
}

func applyStroke(dc *gg.Context, st Style) {
	dc.SetColor(st.Color)
	dc.SetLineWidth(st.StrokeWidth)
}

// Circle is a fixed pixel-diameter disc or ring centered on a point.
type Circle struct {
	Center tiles.GeoPoint
	Style  Style
}

func (c Circle) draw(dc *gg.Context, m *Map) error {
	at, err := localPoint(m, c.Center)
	if err != nil {
		return err
	}
	dc.DrawCircle(float64(at.X), float64(at.Y), c.Style.Diameter/2)
	if c.Style.Fill {
		dc.SetColor(c.Style.Color)
		dc.Fill()
		return nil
	}
	applyStroke(dc, c.Style)
	dc.Stroke()
	return nil
}

// Line is a single stroked segment.
type Line struct {
	From  tiles.GeoPoint
	To    tiles.GeoPoint
	Style Style
}

func (l Line) draw(dc *gg.Context, m *Map) error {
	from, err := localPoint(m, l.From)
	if err != nil {
		return err
	}
	to, err := localPoint(m, l.To)
	if err != nil {
		return err
	}
	applyStroke(dc, l.Style)
	dc.DrawLine(float64(from.X), float64(from.Y), float64(to.X), float64(to.Y))
	dc.Stroke()
	return nil
}

// Rect is the axis-aligned box spanned by two corner points.
type Rect struct {
	A     tiles.GeoPoint
	B     tiles.GeoPoint
	Style Style
}

func (r Rect) draw(dc *gg.Context, m *Map) error {
	a, err := localPoint(m, r.A)
	if err != nil {
		return err
	}
	b, err := localPoint(m, r.B)
	if err != nil {
		return err
	}
	x0, x1 := float64(min(a.X, b.X)), float64(max(a.X, b.X))
	y0, y1 := float64(min(a.Y, b.Y)), float64(max(a.Y, b.Y))
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	if r.Style.Fill {
		dc.SetColor(r.Style.Color)
		dc.Fill()
		return nil
	}
	applyStroke(dc, r.Style)
	dc.Stroke()
	return nil
}

// Polygon is a closed ring, filled or outlined per its style.
type Polygon struct {
	Vertices []tiles.GeoPoint
	Style    Style
}

func (p Polygon) draw(dc *gg.Context, m *Map) error {
	if len(p.Vertices) < 3 {
		return errors.New("polygon needs at least three vertices")
	}
	for i, v := range p.Vertices {
		at, err := localPoint(m, v)
		if err != nil {
			return err
		}
		if i == 0 {
			dc.MoveTo(float64(at.X), float64(at.Y))
		} else {
			dc.LineTo(float64(at.X), float64(at.Y))
		}
	}
	dc.ClosePath()
	if p.Style.Fill {
		dc.SetColor(p.Style.Color)
		dc.Fill()
		return nil
	}
	applyStroke(dc, p.Style)
	dc.Stroke()
	return nil
}

// Path is an open stroked polyline.
type Path struct {
	Points []tiles.GeoPoint
	Style  Style
}

func (p Path) draw(dc *gg.Context, m *Map) error {
	if len(p.Points) < 2 {
		return errors.New("path needs at least two points")
	}
	for i, v := range p.Points {
		at, err := localPoint(m, v)
		if err != nil {
			return err
		}
		if i == 0 {
			dc.MoveTo(float64(at.X), float64(at.Y))
		} else {
			dc.LineTo(float64(at.X), float64(at.Y))
		}
	}
	applyStroke(dc, p.Style)
	dc.Stroke()
	return nil
}

// Text is a label anchored at a geographic point.
type Text struct {
	At    tiles.GeoPoint
	Label string
	Style Style
}

func (t Text) draw(dc *gg.Context, m *Map) error {
	at, err := localPoint(m, t.At)
	if err != nil {
		return err
	}
	drawLabel(dc, t.Label, float64(at.X), float64(at.Y), t.Style)
	return nil
}

// TextOffset is a label at a fixed pixel offset from the map's top-left
// corner, for legends and annotations that do not track geography.
type TextOffset struct {
	Offset image.Point
	Label  string
	Style  Style
}

func (t TextOffset) draw(dc *gg.Context, _ *Map) error {
	drawLabel(dc, t.Label, float64(t.Offset.X), float64(t.Offset.Y), t.Style)
	return nil
}

func drawLabel(dc *gg.Context, label string, x, y float64, st Style) {
	f := st.Font
	if f == nil {
		f = defaultFace()
	}
	dc.SetFontFace(f)
	dc.SetColor(st.Color)
	dc.DrawString(label, x, y)
}

// Group draws its children in order.
type Group []Feature

func (g Group) draw(dc *gg.Context, m *Map) error {
	for _, f := range g {
		if err := f.draw(dc, m); err != nil {
			return err
		}
	}
	return nil
}
