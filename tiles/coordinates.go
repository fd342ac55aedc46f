package tiles

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// DefaultTileSize is the pixel edge length of tiles produced by the built-in
// sources.
const DefaultTileSize = 512

// ZoomMin 最小级别
const ZoomMin = 0

// ZoomMax 最大级别
const ZoomMax = 20

// earth circumference at the equator, meters
const earthCircumference = 40075016.686

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// NewGeoPoint clamps latitude to [-90, 90] and longitude to [-180, 180].
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{
		Lat: clamp(lat, -90, 90),
		Lon: clamp(lon, -180, 180),
	}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// Address identifies one square tile in the web tile pyramid.
// Valid indices satisfy 0 <= X,Y < 2^Zoom.
type Address struct {
	X    int
	Y    int
	Zoom int
}

// String returns the canonical zoom-x-y form. Disk cache file names are
// derived from it, so the format is part of the on-disk contract.
func (a Address) String() string {
	return fmt.Sprintf("%d-%d-%d", a.Zoom, a.X, a.Y)
}

// ParseAddress is the inverse of Address.String.
func ParseAddress(s string) (Address, error) {
	var a Address
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &a.Zoom, &a.X, &a.Y); err != nil {
		return Address{}, fmt.Errorf("parse tile address %q: %w", s, err)
	}
	return a, nil
}

// GlobalPixel is a continuous pixel position within the full tile pyramid at
// one zoom level and tile size. Two GlobalPixels are only comparable when
// they share both.
type GlobalPixel struct {
	X        float64
	Y        float64
	Zoom     int
	TileSize int
}

// MapSize returns the total pixel extent of the pyramid at a zoom level.
func MapSize(zoom, tileSize int) int {
	return int(math.Ceil(float64(tileSize) * math.Exp2(float64(zoom))))
}

// Project converts a GeoPoint to its GlobalPixel using the spherical
// mercator forward projection. Both axes are clamped to [0, MapSize-1].
func Project(p GeoPoint, zoom, tileSize int) GlobalPixel {
	size := float64(MapSize(zoom, tileSize))
	x := (p.Lon + 180) / 360
	sin := math.Sin(p.Lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)
	return GlobalPixel{
		X:        clamp(x*size, 0, size-1),
		Y:        clamp(y*size, 0, size-1),
		Zoom:     zoom,
		TileSize: tileSize,
	}
}

// GeoPointAt inverts the projection for a raw pixel position.
func GeoPointAt(x, y float64, zoom, tileSize int) GeoPoint {
	size := float64(MapSize(zoom, tileSize))
	fx := clamp(x, 0, size-1) / size
	fy := 0.5 - clamp(y, 0, size-1)/size
	lat := 90 - 360*math.Atan(math.Exp(-fy*2*math.Pi))/math.Pi
	lon := 360 * (fx - 0.5)
	return GeoPoint{Lat: lat, Lon: lon}
}

// PixelAt builds the canonical GlobalPixel for a raw pixel position: the
// position is inverted to a GeoPoint and that point re-projected. Round
// trips therefore converge after one normalization, at the cost of sub-pixel
// precision on the first construction. Do not shortcut this.
func PixelAt(x, y float64, zoom, tileSize int) GlobalPixel {
	return Project(GeoPointAt(x, y, zoom, tileSize), zoom, tileSize)
}

// ErrPixelMismatch reports an offset between pixels from different frames.
var ErrPixelMismatch = errors.New("global pixels differ in zoom or tile size")

// Offset returns the integer pixel offset of p relative to anchor. Both
// operands must share zoom and tile size; mixing frames is a contract
// violation, never a silent conversion.
func (p GlobalPixel) Offset(anchor GlobalPixel) (image.Point, error) {
	if p.Zoom != anchor.Zoom || p.TileSize != anchor.TileSize {
		return image.Point{}, fmt.Errorf("%w: (z%d, %dpx) vs (z%d, %dpx)",
			ErrPixelMismatch, p.Zoom, p.TileSize, anchor.Zoom, anchor.TileSize)
	}
	return image.Pt(int(p.X-anchor.X), int(p.Y-anchor.Y)), nil
}

// AddressAt returns the tile containing a point at a zoom level. Indices are
// clamped per axis, so a point on or past a pole or the antimeridian
// degenerates to the nearest valid tile instead of erroring.
func AddressAt(p GeoPoint, zoom int) Address {
	n := math.Exp2(float64(zoom))
	latRad := p.Lat * math.Pi / 180
	fx := math.Floor((p.Lon + 180) / 360 * n)
	fy := math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)
	return Address{
		X:    int(clamp(fx, 0, n-1)),
		Y:    int(clamp(fy, 0, n-1)),
		Zoom: zoom,
	}
}

// Span enumerates the inclusive rectangular grid of addresses between two
// corner tiles, row by row. Both corners must be at the same zoom level.
func Span(topLeft, bottomRight Address) []Address {
	cols := bottomRight.X - topLeft.X + 1
	rows := bottomRight.Y - topLeft.Y + 1
	if cols <= 0 || rows <= 0 {
		return nil
	}
	addrs := make([]Address, 0, cols*rows)
	for y := topLeft.Y; y <= bottomRight.Y; y++ {
		for x := topLeft.X; x <= bottomRight.X; x++ {
			addrs = append(addrs, Address{X: x, Y: y, Zoom: topLeft.Zoom})
		}
	}
	return addrs
}

// GroundResolution returns meters per pixel at a latitude and zoom level.
func GroundResolution(lat float64, zoom, tileSize int) float64 {
	return earthCircumference * math.Cos(lat*math.Pi/180) / float64(MapSize(zoom, tileSize))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
