// Package cache is a key-addressed file cache with a single
// get-or-fetch-and-populate contract, used identically by the graph loader
// and the hazard loader. Payloads are snappy-compressed on disk.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// FetchFunc produces the payload for a key on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Store is a directory of compressed cache entries.
type Store struct {
	dir string
}

// New creates (if needed) the cache directory and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// SanitizeKey normalizes a key for use as a file name: separators are
// stripped ("," removed, spaces and slashes become underscores). "Chicago,
// Illinois, USA" and "Chicago Illinois USA" address the same entry.
func SanitizeKey(key string) string {
	key = strings.ReplaceAll(key, ",", "")
	key = strings.ReplaceAll(key, "/", "_")
	key = strings.ReplaceAll(key, " ", "_")
	return key
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, SanitizeKey(key)+".snappy")
}

// Get returns the decompressed payload for key, reporting whether the entry
// exists. A present-but-unreadable entry is an error.
func (s *Store) Get(key string) ([]byte, bool, error) {
	compressed, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %q: %w", key, err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, fmt.Errorf("decompress cache entry %q: %w", key, err)
	}
	return data, true, nil
}

// Put stores the payload for key, replacing any existing entry. The write
// goes through a temp file and rename so readers never see a torn entry.
func (s *Store) Put(key string, data []byte) error {
	compressed := snappy.Encode(nil, data)

	tmp, err := os.CreateTemp(s.dir, SanitizeKey(key)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}
	return nil
}

// GetOrFetch returns the cached payload for key when present, without
// invoking fetch. On a miss it invokes fetch, stores the payload, and
// returns it. The hit flag reports which path was taken.
// A corrupt entry is treated as a miss and refetched.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (data []byte, hit bool, err error) {
	data, ok, err := s.Get(key)
	if err == nil && ok {
		return data, true, nil
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.Put(key, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}
