package tiles

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheDir is the disk cache location used when callers do not pick
// their own.
const DefaultCacheDir = "tile-cache"

// DefaultMaxAge is how long a cached tile file stays usable.
const DefaultMaxAge = 7 * 24 * time.Hour

// memoryCacheSize bounds the in-memory tier's working set.
const memoryCacheSize = 64

// DiskCache is a directory of tile files with a freshness window. It is an
// explicit handle rather than ambient state so tests can point it at a
// temporary directory. Processes sharing one directory get last-writer-wins
// semantics; writes are not atomic across process boundaries.
type DiskCache struct {
	Dir    string
	MaxAge time.Duration
}

func NewDiskCache(dir string, maxAge time.Duration) DiskCache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return DiskCache{Dir: dir, MaxAge: maxAge}
}

func (d DiskCache) path(addr Address) string {
	return filepath.Join(d.Dir, addr.String()+".png")
}

// Load returns the cached image for addr when its file exists and its
// modification time is within MaxAge. A stale or missing file is a plain
// miss; a fresh file that cannot be read or decoded is an error.
func (d DiskCache) Load(addr Address) (image.Image, bool, error) {
	path := d.path(addr)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > d.MaxAge {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open cached tile %s: %w", addr, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached tile %s: %w", addr, err)
	}
	return img, true, nil
}

// Store persists a tile image, creating the cache directory if absent.
func (d DiskCache) Store(addr Address, img image.Image) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", d.Dir, err)
	}
	f, err := os.Create(d.path(addr))
	if err != nil {
		return fmt.Errorf("write cached tile %s: %w", addr, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode cached tile %s: %w", addr, err)
	}
	return f.Close()
}

// Cached wraps an inner Source with a bounded in-memory cache backed by the
// TTL-expiring disk cache. It exposes the identical Source contract; the
// inner source stays authoritative.
type Cached struct {
	inner  Source
	disk   DiskCache
	memory *lru.Cache[Address, image.Image]
	group  singleflight.Group
	log    *logrus.Logger
}

func NewCached(inner Source, disk DiskCache) *Cached {
	memory, _ := lru.New[Address, image.Image](memoryCacheSize)
	return &Cached{
		inner:  inner,
		disk:   disk,
		memory: memory,
		log:    logrus.StandardLogger(),
	}
}

// SetLogger redirects cache diagnostics away from the standard logger.
func (c *Cached) SetLogger(l *logrus.Logger) {
	c.log = l
}

func (c *Cached) MaxZoom() int {
	return c.inner.MaxZoom()
}

func (c *Cached) TileSize() int {
	return c.inner.TileSize()
}

func (c *Cached) Locator(addr Address) (string, error) {
	return c.inner.Locator(addr)
}

// Fetch serves addr from the memory tier when present. On a miss, at most
// one load per address is in flight at a time; concurrent callers for the
// same address block on that load and share its result.
func (c *Cached) Fetch(addr Address) (image.Image, error) {
	if img, ok := c.memory.Get(addr); ok {
		return img, nil
	}
	v, err, _ := c.group.Do(addr.String(), func() (interface{}, error) {
		if img, ok := c.memory.Get(addr); ok {
			return img, nil
		}
		img, err := c.load(addr)
		if err != nil {
			return nil, err
		}
		c.memory.Add(addr, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// load consults the disk tier before the inner source and repopulates the
// disk tier on an inner fetch.
func (c *Cached) load(addr Address) (image.Image, error) {
	img, ok, err := c.disk.Load(addr)
	if err != nil {
		return nil, err
	}
	if ok {
		return img, nil
	}
	img, err = c.inner.Fetch(addr)
	if err != nil {
		return nil, err
	}
	if err := c.disk.Store(addr, img); err != nil {
		// The fetch itself succeeded; losing the disk copy only costs a
		// refetch on the next run.
		c.log.Warnf("tile cache: %s", err)
	}
	return img, nil
}

// MemoryLen reports how many tiles the memory tier currently holds.
func (c *Cached) MemoryLen() int {
	return c.memory.Len()
}

// CachedAddresses lists the addresses in the memory tier, oldest first. The
// disk tier is not exposed.
func (c *Cached) CachedAddresses() []Address {
	return c.memory.Keys()
}
