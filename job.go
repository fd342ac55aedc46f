package main

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/teris-io/shortid"
	pb "gopkg.in/cheggaaa/pb.v1"

	"staticmap/render"
	"staticmap/tiles"
)

func InitJob() {
	start := time.Now()

	id, _ := shortid.Generate()
	job := &Job{ID: id}
	SafeExitInst.Register(job.finishBar)

	if err := job.Run(); err != nil {
		log.Fatalf("job %s failed: %s", job.ID, err)
	}

	secs := time.Since(start).Seconds()
	log.Printf("\n%.3fs finished...", secs)
}

// Job 合成任务
type Job struct {
	ID  string
	bar *pb.ProgressBar
}

// Run composes one map from the loaded config and writes it to the output
// file.
func (job *Job) Run() error {
	src, err := job.buildSource()
	if err != nil {
		return err
	}

	b := render.New().
		Source(src).
		Center(conf.Map.Lat, conf.Map.Lon)

	if conf.Map.WidthNm > 0 {
		b = b.WidthNauticalMiles(conf.Map.WidthNm)
	} else {
		b = b.WidthPixels(conf.Map.WidthPx, conf.Map.Zoom)
	}

	if conf.Cache.Enabled {
		maxAge := time.Duration(conf.Cache.MaxAgeDays) * 24 * time.Hour
		b = b.DiskCache(conf.Cache.Directory, maxAge)
		log.Infof("job %s: disk cache %s, max age %s", job.ID, conf.Cache.Directory, maxAge)
	}

	if conf.Overlay.Geojson != "" {
		features, err := loadOverlay(conf.Overlay.Geojson)
		if err != nil {
			return err
		}
		for _, f := range features {
			b = b.Add(f)
		}
	}

	log.Infof("job %s: composing map around (%.4f, %.4f)", job.ID, conf.Map.Lat, conf.Map.Lon)
	if err := b.WriteFile(conf.Output.File); err != nil {
		return err
	}
	job.finishBar()
	log.Infof("job %s: wrote %s", job.ID, conf.Output.File)
	return nil
}

// buildSource picks the tile source from the config and wraps it so each
// fetched tile ticks the progress bar.
func (job *Job) buildSource() (tiles.Source, error) {
	var src tiles.Source
	switch strings.ToLower(conf.Source.Type) {
	case "solid":
		c, err := parseHexColor(conf.Source.Color)
		if err != nil {
			return nil, err
		}
		src = tiles.NewSolid(c)
	case "debug":
		src = tiles.Debug{}
	case "http":
		if conf.Source.URL == "" {
			return nil, fmt.Errorf("source.url is required for the http source")
		}
		src = tiles.NewHTTP(conf.Source.URL)
	default:
		return nil, fmt.Errorf("unknown source type %q", conf.Source.Type)
	}

	job.bar = pb.New(job.expectTiles(src)).Prefix(fmt.Sprintf("Job %s : ", job.ID))
	job.bar.SetRefreshRate(time.Second)
	job.bar.Start()
	return progressSource{Source: src, bar: job.bar}, nil
}

// expectTiles estimates how many tiles the composition will touch, for the
// progress bar total. Cache hits finish early, never late.
func (job *Job) expectTiles(src tiles.Source) int {
	ts := src.TileSize()
	widthPx := conf.Map.WidthPx
	if conf.Map.WidthNm > 0 {
		radius := conf.Map.WidthNm * render.MetersPerNauticalMile / 2
		zoom := render.ZoomFor(radius, conf.Map.Lat, src)
		widthPx = int(2 * radius / tiles.GroundResolution(conf.Map.Lat, zoom, ts))
	}
	across := widthPx/ts + 2
	return across * across
}

func (job *Job) finishBar() {
	if job.bar != nil {
		job.bar.Finish()
		job.bar = nil
	}
}

// progressSource ticks the progress bar once per fetched tile.
type progressSource struct {
	tiles.Source
	bar *pb.ProgressBar
}

func (p progressSource) Fetch(addr tiles.Address) (image.Image, error) {
	defer p.bar.Increment()
	return p.Source.Fetch(addr)
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
