package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/font"

	"staticmap/tiles"
)

// Builder assembles one map request as a declarative chain: pick a source,
// a center, a width (by ground distance or by pixels plus zoom, exactly
// once), optionally a disk cache, then accumulate styled features. The
// first configuration error sticks and is returned by the terminal
// operations; nothing is fetched until one of those runs.
type Builder struct {
	src      tiles.Source
	center   *tiles.GeoPoint
	radius   float64
	widthPx  int
	zoom     int
	widthSet widthMode
	disk     *tiles.DiskCache
	style    Style
	features FeatureSet
	err      error
}

type widthMode int

const (
	widthUnset widthMode = iota
	widthByDistance
	widthByPixels
)

func New() *Builder {
	return &Builder{style: DefaultStyle()}
}

func (b *Builder) fail(format string, args ...interface{}) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
	return b
}

// Source sets the tile source. A source may be chosen only once.
func (b *Builder) Source(src tiles.Source) *Builder {
	if b.src != nil {
		return b.fail("tile source already chosen")
	}
	b.src = src
	return b
}

// SolidSource selects the synthetic uniform-color source.
func (b *Builder) SolidSource(c color.Color) *Builder {
	return b.Source(tiles.NewSolid(c))
}

// DebugSource selects the synthetic address-label source.
func (b *Builder) DebugSource() *Builder {
	return b.Source(tiles.Debug{})
}

// HTTPSource selects a network source with an {z}/{x}/{y} URL template.
func (b *Builder) HTTPSource(urlTemplate string) *Builder {
	return b.Source(tiles.NewHTTP(urlTemplate))
}

// Center sets the geographic center of the map.
func (b *Builder) Center(lat, lon float64) *Builder {
	p := tiles.NewGeoPoint(lat, lon)
	b.center = &p
	return b
}

// WidthMeters sets the map width as a ground distance. Mutually exclusive
// with WidthPixels, and settable once.
func (b *Builder) WidthMeters(meters float64) *Builder {
	if b.widthSet != widthUnset {
		return b.fail("map width already set")
	}
	if meters <= 0 {
		return b.fail("map width must be positive, got %g", meters)
	}
	b.widthSet = widthByDistance
	b.radius = meters / 2
	return b
}

// WidthNauticalMiles is WidthMeters in nautical miles.
func (b *Builder) WidthNauticalMiles(nm float64) *Builder {
	return b.WidthMeters(nm * MetersPerNauticalMile)
}

// WidthPixels sets an explicit pixel width and zoom level. Mutually
// exclusive with WidthMeters, and settable once.
func (b *Builder) WidthPixels(px, zoom int) *Builder {
	if b.widthSet != widthUnset {
		return b.fail("map width already set")
	}
	if px <= 0 {
		return b.fail("map width must be positive, got %dpx", px)
	}
	b.widthSet = widthByPixels
	b.widthPx = px
	b.zoom = zoom
	return b
}

// DiskCache wraps the source with the two-tier cache, persisting tiles to
// dir for maxAge (defaults apply when zero).
func (b *Builder) DiskCache(dir string, maxAge time.Duration) *Builder {
	d := tiles.NewDiskCache(dir, maxAge)
	b.disk = &d
	return b
}

// Color, Diameter, StrokeWidth, Fill and Font adjust the current brush;
// features added afterwards pick it up.
func (b *Builder) Color(c color.Color) *Builder {
	b.style.Color = c
	return b
}

func (b *Builder) Diameter(px float64) *Builder {
	b.style.Diameter = px
	return b
}

func (b *Builder) StrokeWidth(px float64) *Builder {
	b.style.StrokeWidth = px
	return b
}

func (b *Builder) Fill(fill bool) *Builder {
	b.style.Fill = fill
	return b
}

func (b *Builder) Font(face font.Face) *Builder {
	b.style.Font = face
	return b
}

// Circle adds a circle feature at the current brush.
func (b *Builder) Circle(lat, lon float64) *Builder {
	return b.Add(Circle{Center: tiles.NewGeoPoint(lat, lon), Style: b.style})
}

// Line adds a stroked segment.
func (b *Builder) Line(fromLat, fromLon, toLat, toLon float64) *Builder {
	return b.Add(Line{
		From:  tiles.NewGeoPoint(fromLat, fromLon),
		To:    tiles.NewGeoPoint(toLat, toLon),
		Style: b.style,
	})
}

// Rect adds the box spanned by two corners.
func (b *Builder) Rect(aLat, aLon, bLat, bLon float64) *Builder {
	return b.Add(Rect{
		A:     tiles.NewGeoPoint(aLat, aLon),
		B:     tiles.NewGeoPoint(bLat, bLon),
		Style: b.style,
	})
}

// Polygon adds a closed ring over the given vertices.
func (b *Builder) Polygon(vertices ...tiles.GeoPoint) *Builder {
	return b.Add(Polygon{Vertices: vertices, Style: b.style})
}

// Path adds an open polyline over the given points.
func (b *Builder) Path(points ...tiles.GeoPoint) *Builder {
	return b.Add(Path{Points: points, Style: b.style})
}

// Text adds a label anchored at a geographic point.
func (b *Builder) Text(lat, lon float64, label string) *Builder {
	return b.Add(Text{At: tiles.NewGeoPoint(lat, lon), Label: label, Style: b.style})
}

// TextOffset adds a label at a pixel offset from the top-left corner.
func (b *Builder) TextOffset(x, y int, label string) *Builder {
	return b.Add(TextOffset{Offset: image.Pt(x, y), Label: label, Style: b.style})
}

// Add appends a prebuilt feature; later features paint over earlier ones.
func (b *Builder) Add(f Feature) *Builder {
	b.features = append(b.features, f)
	return b
}

// Build composes the map and draws the accumulated features.
func (b *Builder) Build() (*Map, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.src == nil {
		return nil, errors.New("no tile source chosen")
	}
	if b.center == nil {
		return nil, errors.New("no center point set")
	}

	src := b.src
	if b.disk != nil {
		src = tiles.NewCached(src, *b.disk)
	}

	var (
		m   *Map
		err error
	)
	switch b.widthSet {
	case widthByDistance:
		m, err = ComposeRadius(src, *b.center, b.radius)
	case widthByPixels:
		m, err = Compose(src, *b.center, b.widthPx, b.widthPx, b.zoom)
	default:
		return nil, errors.New("no map width set")
	}
	if err != nil {
		return nil, err
	}
	if err := m.Draw(b.features...); err != nil {
		return nil, err
	}
	return m, nil
}

// Render is Build returning only the raster.
func (b *Builder) Render() (image.Image, error) {
	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	return m.Image(), nil
}

// WriteFile is Build followed by Map.WriteFile.
func (b *Builder) WriteFile(path string) error {
	m, err := b.Build()
	if err != nil {
		return err
	}
	return m.WriteFile(path)
}
