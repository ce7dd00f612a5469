package imgtex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/imgtex/internal/cache"
)

// DefaultCacheSize is the capacity of the process-wide frame cache.
const DefaultCacheSize = 32

// FrameCache reuses frames rendered for equivalent requests.
//
// Entries are keyed by source identity (file path, size and modification
// time, or a digest of bitmap bytes) together with every parameter that
// affects the output pixels. Concurrent renders of the same key are
// collapsed into one.
//
// Thread safety: All methods are safe for concurrent use.
type FrameCache struct {
	lru   *cache.Cache[cacheKey, *pixels]
	group singleflight.Group
}

// NewFrameCache creates a frame cache holding up to capacity frames.
// A capacity <= 0 means unlimited.
func NewFrameCache(capacity int) *FrameCache {
	return &FrameCache{
		lru: cache.New[cacheKey, *pixels](capacity, func(_ cacheKey, px *pixels) {
			px.release()
		}),
	}
}

var defaultFrameCache = NewFrameCache(DefaultCacheSize)

// DefaultFrameCache returns the process-wide frame cache.
func DefaultFrameCache() *FrameCache {
	return defaultFrameCache
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	return c.lru.Len()
}

// Clear drops every cached frame. Frames already pulled by hosts stay valid.
func (c *FrameCache) Clear() {
	c.lru.Clear()
}

// CacheStats contains frame cache statistics.
type CacheStats = cache.Stats

// Stats returns cache statistics.
func (c *FrameCache) Stats() CacheStats {
	return c.lru.Stats()
}

// lookup returns a retained cached frame.
func (c *FrameCache) lookup(key cacheKey) (*pixels, bool) {
	px, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return px.retain(), true
}

// fill renders key once across concurrent callers and stores the result.
// Each caller receives its own reference.
//
// Cached pixels are never returned to a buffer pool, so a reference taken
// after eviction stays valid.
func (c *FrameCache) fill(key cacheKey, render func() (*pixels, error)) (*pixels, error) {
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if px, ok := c.lru.Get(key); ok {
			return px, nil
		}
		px, err := render()
		if err != nil {
			return nil, err
		}
		c.lru.Set(key, px)
		return px, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pixels).retain(), nil
}

// cacheKey identifies a rendered frame.
type cacheKey struct {
	source        string
	width, height int
	srcW, srcH    int
	fit           FitMode
	format        PixelFormat
	interp        Interpolation
	strict        bool
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%dx%d|%dx%d|%s|%s|%s|%t",
		k.source, k.width, k.height, k.srcW, k.srcH, k.fit, k.format, k.interp, k.strict)
}

// sourceIdentity identifies the bytes a request refers to. A file is
// identified by its cleaned path, size and modification time so that a
// rewritten file misses the cache.
func sourceIdentity(req *Request) (string, error) {
	if req.Path == "" {
		sum := sha256.Sum256(req.Bitmap)
		return "sha256:" + hex.EncodeToString(sum[:]), nil
	}

	path := filepath.Clean(req.Path)
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	return fmt.Sprintf("file:%s:%d:%d", path, fi.Size(), fi.ModTime().UnixNano()), nil
}

func newCacheKey(req *Request, o *options) (cacheKey, error) {
	src, err := sourceIdentity(req)
	if err != nil {
		return cacheKey{}, err
	}
	return cacheKey{
		source: src,
		width:  req.Width,
		height: req.Height,
		srcW:   req.SourceWidth,
		srcH:   req.SourceHeight,
		fit:    req.Fit,
		format: o.format,
		interp: o.interp,
		strict: o.strict,
	}, nil
}
