package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// PageCache stores rendered HTML on disk, one file per key, under
// <dir>/<namespace>/.
type PageCache struct {
	dir    string
	maxAge time.Duration
}

func NewPageCache(dir string, maxAge time.Duration) *PageCache {
	return &PageCache{dir: dir, maxAge: maxAge}
}

// Path returns the cache file path for key in namespace.
func (p *PageCache) Path(namespace, key string) string {
	shortHash := generateHash(namespace + key)[:16]
	return filepath.Join(p.dir, namespace, fmt.Sprintf("%s_%s.html", safeName(key), shortHash))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// safeName keeps keys from escaping the namespace directory.
func safeName(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}

func (p *PageCache) Write(namespace, key, html string) error {
	if err := os.MkdirAll(filepath.Join(p.dir, namespace), 0755); err != nil {
		return err
	}

	// Write to a temp file and rename so readers never see a partial page.
	path := p.Path(namespace, key)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Read returns the cached page if it exists and is younger than maxAge.
func (p *PageCache) Read(namespace, key string) (string, bool) {
	path := p.Path(namespace, key)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if time.Since(info.ModTime()) > p.maxAge {
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// Clear removes the cached page for key.
func (p *PageCache) Clear(namespace, key string) error {
	err := os.Remove(p.Path(namespace, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearNamespace removes every cached page in namespace.
func (p *PageCache) ClearNamespace(namespace string) error {
	return os.RemoveAll(filepath.Join(p.dir, namespace))
}

// ClearOld removes cache files older than maxAge.
func (p *PageCache) ClearOld() error {
	err := filepath.Walk(p.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		if time.Since(info.ModTime()) > p.maxAge {
			os.Remove(path)
		}

		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
