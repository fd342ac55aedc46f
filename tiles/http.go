package tiles

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Credential lookup locations for HTTP sources whose URL template carries a
// {token} placeholder. First match wins.
const (
	TokenEnvVar   = "MAP_TILE_TOKEN"
	TokenProperty = "source.token"
	TokenFileName = ".map-tile-token"
)

// HTTP fetches tiles from a remote XYZ provider.
//
// The URL template uses {z}, {x} and {y} placeholders, plus an optional
// {token} placeholder filled from the provider credential. The credential is
// resolved lazily, on first use: the TokenEnvVar environment variable, then
// the TokenProperty viper property, then a TokenEnvVar=value line in the
// TokenFileName file under the user's home directory. Missing everywhere is
// a configuration error, not a construction error.
type HTTP struct {
	URLTemplate string
	Zoom        int          // max zoom level, ZoomMax when zero
	Size        int          // tile edge length, DefaultTileSize when zero
	Client      *http.Client // http.DefaultClient when nil

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

func NewHTTP(urlTemplate string) *HTTP {
	return &HTTP{URLTemplate: urlTemplate}
}

func (s *HTTP) MaxZoom() int {
	if s.Zoom > 0 {
		return s.Zoom
	}
	return ZoomMax
}

func (s *HTTP) TileSize() int {
	if s.Size > 0 {
		return s.Size
	}
	return DefaultTileSize
}

// Locator expands the URL template for one address.
func (s *HTTP) Locator(addr Address) (string, error) {
	url := strings.Replace(s.URLTemplate, "{x}", strconv.Itoa(addr.X), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(addr.Y), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(addr.Zoom), -1)
	if strings.Contains(url, "{token}") {
		token, err := s.Token()
		if err != nil {
			return "", err
		}
		url = strings.Replace(url, "{token}", token, -1)
	}
	return url, nil
}

// Token resolves the provider credential. The result, found or not, is fixed
// after the first call.
func (s *HTTP) Token() (string, error) {
	s.tokenOnce.Do(func() {
		s.token, s.tokenErr = resolveToken()
	})
	return s.token, s.tokenErr
}

func resolveToken() (string, error) {
	if v := os.Getenv(TokenEnvVar); v != "" {
		return v, nil
	}
	if v := viper.GetString(TokenProperty); v != "" {
		return v, nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		if v := tokenFromFile(filepath.Join(home, TokenFileName)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no tile provider token: set %s, the %q property, or ~/%s",
		TokenEnvVar, TokenProperty, TokenFileName)
}

func tokenFromFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if ok && key == TokenEnvVar {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Fetch resolves the locator, downloads the tile and decodes it. Transport
// and decode failures come back wrapped, never swallowed; there is no retry
// policy here, that belongs to a caller wrapping the source.
func (s *HTTP) Fetch(addr Address) (image.Image, error) {
	url, err := s.Locator(addr)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %s: status code %d", addr, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", addr, err)
	}
	return img, nil
}
