package main

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"staticmap/render"
	"staticmap/tiles"
)

// loadOverlay reads a GeoJSON feature collection and converts its geometries
// into drawable map features using the configured overlay style.
func loadOverlay(path string) ([]render.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read overlay file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal overlay: %w", err)
	}

	c, err := parseHexColor(conf.Overlay.Color)
	if err != nil {
		return nil, err
	}
	style := render.DefaultStyle()
	style.Color = c
	style.StrokeWidth = conf.Overlay.StrokeWidth
	style.Fill = conf.Overlay.Fill

	var collection orb.Collection
	var features []render.Feature
	for _, f := range fc.Features {
		collection = append(collection, f.Geometry)
		features = append(features, geometryFeatures(f.Geometry, style)...)
	}
	if len(collection) > 0 {
		b := collection.Bound()
		log.Infof("overlay %s: %d features, bound (%.4f, %.4f) - (%.4f, %.4f)",
			path, len(features), b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
	}
	return features, nil
}

// geometryFeatures maps one orb geometry onto the drawable variants: points
// become circles, line strings become paths, rings and polygons become
// polygon features.
func geometryFeatures(g orb.Geometry, style render.Style) []render.Feature {
	switch g := g.(type) {
	case orb.Point:
		return []render.Feature{render.Circle{Center: geoPoint(g), Style: style}}
	case orb.MultiPoint:
		out := make([]render.Feature, 0, len(g))
		for _, p := range g {
			out = append(out, render.Circle{Center: geoPoint(p), Style: style})
		}
		return out
	case orb.LineString:
		return []render.Feature{render.Path{Points: geoPoints(g), Style: style}}
	case orb.MultiLineString:
		out := make([]render.Feature, 0, len(g))
		for _, ls := range g {
			out = append(out, render.Path{Points: geoPoints(ls), Style: style})
		}
		return out
	case orb.Ring:
		return []render.Feature{render.Polygon{Vertices: geoPoints(orb.LineString(g)), Style: style}}
	case orb.Polygon:
		var out []render.Feature
		for _, ring := range g {
			out = append(out, geometryFeatures(ring, style)...)
		}
		return out
	case orb.MultiPolygon:
		var out []render.Feature
		for _, poly := range g {
			out = append(out, geometryFeatures(poly, style)...)
		}
		return out
	case orb.Collection:
		var out []render.Feature
		for _, member := range g {
			out = append(out, geometryFeatures(member, style)...)
		}
		return out
	default:
		log.Warnf("overlay: skipping unsupported geometry %T", g)
		return nil
	}
}

func geoPoint(p orb.Point) tiles.GeoPoint {
	return tiles.NewGeoPoint(p.Lat(), p.Lon())
}

func geoPoints(ls orb.LineString) []tiles.GeoPoint {
	out := make([]tiles.GeoPoint, 0, len(ls))
	for _, p := range ls {
		out = append(out, geoPoint(p))
	}
	return out
}
