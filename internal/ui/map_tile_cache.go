package ui

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	tileCacheFileExt   = ".tile"
	tileRequestTimeout = 15 * time.Second
	bytesPerMiB        = int64(1024 * 1024)
)

var tileCacheLogger = slog.With("component", "ui.tile_cache")

// tileCache is an http.RoundTripper that keeps downloaded map tiles on disk
// and evicts the least recently used ones once maxBytes is exceeded.
// In offline mode only cached tiles are served.
type tileCache struct {
	base     http.RoundTripper
	dir      string
	maxBytes int64
	offline  bool

	mu sync.Mutex
}

func newTileHTTPClient(dir string, maxMiB int, offline bool) *http.Client {
	client := &http.Client{Timeout: tileRequestTimeout}
	if dir == "" {
		tileCacheLogger.Info("map tile cache disabled")

		return client
	}
	client.Transport = newTileCache(http.DefaultTransport, dir, int64(maxMiB)*bytesPerMiB, offline)

	return client
}

func newTileCache(base http.RoundTripper, dir string, maxBytes int64, offline bool) *tileCache {
	tileCacheLogger.Info("initializing map tile cache", "dir", dir, "max_bytes", maxBytes, "offline", offline)

	return &tileCache{base: base, dir: dir, maxBytes: maxBytes, offline: offline}
}

func (c *tileCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || req.URL == nil {
		return c.base.RoundTrip(req)
	}

	rawURL := req.URL.String()
	path := c.pathFor(rawURL)
	if data, ok := c.read(path); ok {
		tileCacheLogger.Debug("served map tile from cache", "url", rawURL, "bytes", len(data))

		return tileResponse(req, http.StatusOK, data), nil
	}
	if c.offline {
		tileCacheLogger.Debug("map tile is not cached in offline mode", "url", rawURL)

		return tileResponse(req, http.StatusNotFound, nil), nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		tileCacheLogger.Warn("map tile request failed", "url", rawURL, "error", err)

		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	if resp.StatusCode == http.StatusOK && len(body) > 0 {
		c.write(path, body)
	}

	return resp, nil
}

func tileResponse(req *http.Request, status int, data []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"image/png"}},
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}
}

func (c *tileCache) pathFor(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:])

	return filepath.Join(c.dir, name[:2], name[2:4], name+tileCacheFileExt)
}

func (c *tileCache) read(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			tileCacheLogger.Debug("reading cached map tile failed", "path", path, "error", err)
		}

		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)

	return data, true
}

func (c *tileCache) write(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tileCacheLogger.Warn("creating map tile cache directory failed", "path", path, "error", err)

		return
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		tileCacheLogger.Warn("writing map tile failed", "path", tmpPath, "error", err)
		_ = os.Remove(tmpPath)

		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		tileCacheLogger.Warn("renaming map tile failed", "path", path, "error", err)
		_ = os.Remove(tmpPath)

		return
	}
	c.evictLocked()
}

func (c *tileCache) evictLocked() {
	if c.maxBytes <= 0 {
		return
	}

	type entry struct {
		path    string
		size    int64
		modTime time.Time
	}
	var (
		entries []entry
		total   int64
	)
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != tileCacheFileExt {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		entries = append(entries, entry{path: path, size: info.Size(), modTime: info.ModTime()})

		return nil
	})
	if total <= c.maxBytes {
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })
	for _, e := range entries {
		if total <= c.maxBytes {
			break
		}
		if err := os.Remove(e.path); err != nil {
			continue
		}
		total -= e.size
	}
	tileCacheLogger.Debug("evicted map tiles", "remaining_bytes", total, "max_bytes", c.maxBytes)
}
