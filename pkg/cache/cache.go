// Package cache stores compiled scene graphs and rendered artifacts.
//
// The pipeline caches two kinds of entries:
//   - scenes: the compiled scene graph for a (spec, data, canvas) triple
//   - artifacts: one encoded output (svg, png, json, msgpack) of a scene
//
// Keys come from a [Keyer], so hosted deployments can namespace entries with
// a [ScopedKeyer]. Backends:
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for multiple server instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// Use [Open] to build a backend from its name.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	TTLScene    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend       string
	Dir           string // file backend; DefaultDir() when empty
	RedisURL      string // e.g. redis://localhost:6379/0
	MongoURI      string // e.g. mongodb://localhost:27017
	MongoDatabase string
}

// Open returns the backend named by o.Backend. An empty name selects the
// file backend.
func Open(ctx context.Context, o Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch o.Backend {
	case "", BackendFile:
		dir := o.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		var fc *FileCache
		if fc, err = NewFileCache(dir); err == nil {
			c = fc
		}
	case BackendRedis:
		var rc *RedisCache
		if rc, err = NewRedisCache(ctx, o.RedisURL, "gramgraph:"); err == nil {
			c = rc
		}
	case BackendMongo:
		db := o.MongoDatabase
		if db == "" {
			db = "gramgraph"
		}
		var mc *MongoCache
		if mc, err = NewMongoCache(ctx, o.MongoURI, db, "cache"); err == nil {
			c = mc
		}
	case BackendNone:
		c = NewNullCache()
	default:
		err = fmt.Errorf("unknown cache backend %q (want file, redis, mongo or none)", o.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultDir returns the per-user cache directory, honoring XDG_CACHE_HOME.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "gramgraph"), nil
}
