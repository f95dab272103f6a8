package pixel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WEBP format decoder
)

// ImageCache provides thread-safe caching of loaded buffers to avoid redundant
// disk reads and decodes.
//
// Buffers are keyed by the exact path string passed to Load. Cached buffers are
// shared between callers and must be treated as read-only.
//
// # Example Usage
//
//	cache := pixel.NewImageCache()
//	buf, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/image.png") // Optional: free memory
type ImageCache struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
}

// NewImageCache creates and initializes a new empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		buffers: make(map[string]*Buffer),
	}
}

// Load retrieves a buffer from the cache or loads it from disk if not cached.
func (c *ImageCache) Load(path string) (*Buffer, error) {
	c.mu.RLock()
	if buf, ok := c.buffers[path]; ok {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	buf, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.buffers[path] = buf
	c.mu.Unlock()

	return buf, nil
}

// Len returns the number of cached buffers.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}

// Clear removes all buffers from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.buffers = make(map[string]*Buffer)
	c.mu.Unlock()
}

// Evict removes a specific buffer from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.buffers, path)
	c.mu.Unlock()
}

// Load decodes an image file into a buffer.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WEBP. EXIF orientation
// is applied for JPEG files. Grayscale images load as one-channel buffers and
// everything else as four-channel RGBA.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func Load(path string) (*Buffer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("image file not found: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return FromImage(img, ChannelsFor(img))
}

// Save encodes buf to path, choosing the format from the file extension.
// Paths without a recognized extension are written as PNG. Missing parent
// directories are created.
func Save(buf *Buffer, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.PNG
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := imaging.Encode(f, buf.Image(), format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}

// SaveTimestamped writes buf as PNG into dir using the name
// "<filter>_<yyyyMMdd_HHmmss>.png" and returns the absolute path written.
func SaveTimestamped(buf *Buffer, dir, filterName string) (string, error) {
	name := fmt.Sprintf("%s_%s.png", fileSafe(filterName), time.Now().Format("20060102_150405"))
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	if err := Save(buf, path); err != nil {
		return "", err
	}
	return path, nil
}

// DerivedName returns "<stem>_<filter>.png" for a source path, the name
// batch runs use so outputs from one run do not collide.
func DerivedName(srcPath, filterName string) string {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return fmt.Sprintf("%s_%s.png", stem, fileSafe(filterName))
}

// fileSafe lowercases name and replaces characters that are awkward in file names.
func fileSafe(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == '+':
			return 'p'
		}
		return '_'
	}, name)
}

// IsSupported reports whether path has an image extension the loader accepts.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// Info contains metadata about a loaded image file.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// Channels is the channel count of the loaded buffer.
	Channels int `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads an image through cache and returns metadata about it.
func LoadInfo(cache *ImageCache, path string) (*Info, error) {
	buf, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	case ".webp":
		format = "webp"
	}

	return &Info{
		Width:         buf.Width,
		Height:        buf.Height,
		Format:        format,
		Channels:      buf.Channels,
		FileSizeBytes: stat.Size(),
	}, nil
}
