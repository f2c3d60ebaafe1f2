// Package assets loads custom projection images and caches their pixel sizes.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// Decoders are picked by extension. TGA has no magic bytes, so sniffing
// through image.Decode cannot tell it apart from other formats.
var codecs = map[string]codec{
	".png":  {png.Decode, png.DecodeConfig},
	".jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	".gif":  {gif.Decode, gif.DecodeConfig},
	".bmp":  {bmp.Decode, bmp.DecodeConfig},
	".tif":  {tiff.Decode, tiff.DecodeConfig},
	".tiff": {tiff.Decode, tiff.DecodeConfig},
	".webp": {webp.Decode, webp.DecodeConfig},
	".tga":  {tga.Decode, tga.DecodeConfig},
}

// Supported reports whether path has an extension the store can decode.
func Supported(path string) bool {
	_, ok := codecs[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Store resolves custom texture images. Relative paths are taken from Root.
type Store struct {
	Root string

	sizes  *Cache[projection.Size]
	images *Cache[image.Image]
}

// NewStore creates a store rooted at dir ("" means the working directory).
func NewStore(dir string) *Store {
	return &Store{
		Root:   dir,
		sizes:  NewCache[projection.Size](),
		images: NewCache[image.Image](),
	}
}

func (s *Store) resolve(path string) string {
	if s.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// Size returns the pixel size of an image, reading only its header.
func (s *Store) Size(path string) (projection.Size, error) {
	full := s.resolve(path)
	if size, ok := s.sizes.Get(full); ok {
		return size, nil
	}

	c, err := codecFor(full)
	if err != nil {
		return projection.Size{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		return projection.Size{}, err
	}
	defer f.Close()

	cfg, err := c.decodeConfig(f)
	if err != nil {
		return projection.Size{}, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return projection.Size{}, fmt.Errorf("image %s has empty size %dx%d", path, cfg.Width, cfg.Height)
	}

	size := projection.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	s.sizes.Set(full, size)
	return size, nil
}

// Image decodes the whole image.
func (s *Store) Image(path string) (image.Image, error) {
	full := s.resolve(path)
	if img, ok := s.images.Get(full); ok {
		return img, nil
	}

	c, err := codecFor(full)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := c.decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := img.Bounds()
	s.images.Set(full, img)
	s.sizes.Set(full, projection.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	return img, nil
}

// Forget drops cached data for path, e.g. after the file changed on disk.
func (s *Store) Forget(path string) {
	full := s.resolve(path)
	s.sizes.Delete(full)
	s.images.Delete(full)
}

// Stats returns size-cache statistics.
func (s *Store) Stats() (hits, misses int) {
	return s.sizes.Stats()
}

func codecFor(path string) (codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := codecs[ext]
	if !ok {
		return codec{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return c, nil
}

// Cache is a simple in-memory cache keyed by path.
type Cache[V any] struct {
	data map[string]V
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Delete removes an item.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
