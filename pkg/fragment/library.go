package fragment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
	"github.com/haivivi/wordsplice/pkg/audio/wav"
	"github.com/haivivi/wordsplice/pkg/kv"
	"github.com/haivivi/wordsplice/pkg/storage"
)

// CachePrefix is the first key segment of every cached fragment.
const CachePrefix = "fragment"

// CacheKey returns the cache key for h: fragment:<store>:<path>.
func CacheKey(h Handle) kv.Key {
	return kv.Key{CachePrefix, h.Store.String(), h.Path}
}

// cached is the msgpack record stored per fragment. Version is the store's
// fingerprint of the file when it was decoded.
type cached struct {
	SampleRate int    `msgpack:"rate"`
	Version    string `msgpack:"ver"`
	Samples    []byte `msgpack:"pcm"`
}

// Library loads fragment samples. Decoded fragments are kept in a kv.Store
// and reused while the store reports the same file version, so a
// re-recorded fragment is decoded again. A Library is safe for concurrent
// use.
type Library struct {
	format pcm.Format
	cache  kv.Store
	group  singleflight.Group
	log    *slog.Logger
}

// NewLibrary returns a Library that caches into cache. A nil cache disables
// caching.
func NewLibrary(cache kv.Store) *Library {
	return &Library{
		format: pcm.L16Mono44K,
		cache:  cache,
		log:    slog.Default().With("component", "fragment"),
	}
}

// Format is the sample format every fragment must have.
func (l *Library) Format() pcm.Format {
	return l.format
}

// Load returns the samples behind h. The result is owned by the caller.
func (l *Library) Load(ctx context.Context, h Handle) (pcm.Buffer, error) {
	if !h.Found || h.Store == nil {
		return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, h)
	}

	ver, err := storage.Version(ctx, h.Store, h.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFragmentNotFound, h, err)
	}

	key := CacheKey(h)
	if b, ok := l.lookup(ctx, key, ver); ok {
		return b, nil
	}

	v, err, _ := l.group.Do(key.String()+"@"+ver, func() (any, error) {
		b, err := l.read(ctx, h)
		if err != nil {
			return nil, err
		}
		l.store(ctx, key, ver, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(pcm.Buffer).Clone(), nil
}

func (l *Library) read(ctx context.Context, h Handle) (pcm.Buffer, error) {
	rc, err := h.Store.Read(ctx, h.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFragmentNotFound, h, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFragmentNotFound, h, err)
	}

	b, err := wav.Decode(bytes.NewReader(data), l.format)
	if errors.Is(err, wav.ErrFormatMismatch) {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormatMismatch, h, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFragmentNotFound, h, err)
	}
	l.log.Debug("fragment decoded", "path", h.String(), "samples", len(b))
	return b, nil
}

func (l *Library) lookup(ctx context.Context, key kv.Key, ver string) (pcm.Buffer, bool) {
	if l.cache == nil {
		return nil, false
	}
	var rec cached
	err := kv.GetValue(ctx, l.cache, key, &rec)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		l.log.Warn("fragment cache read failed", "key", key.String(), "error", err)
		return nil, false
	}
	if rec.SampleRate != l.format.SampleRate() {
		return nil, false
	}
	if rec.Version != ver {
		l.log.Debug("fragment changed", "key", key.String(), "cached", rec.Version, "current", ver)
		return nil, false
	}
	return pcm.FromBytes(rec.Samples), true
}

func (l *Library) store(ctx context.Context, key kv.Key, ver string, b pcm.Buffer) {
	if l.cache == nil {
		return
	}
	rec := cached{SampleRate: l.format.SampleRate(), Version: ver, Samples: b.Bytes()}
	if err := kv.SetValue(ctx, l.cache, key, rec); err != nil {
		l.log.Warn("fragment cache write failed", "key", key.String(), "error", err)
	}
}

// Purge removes every cached fragment and returns how many entries were
// dropped.
func (l *Library) Purge(ctx context.Context) (int, error) {
	if l.cache == nil {
		return 0, nil
	}
	var keys []kv.Key
	for e, err := range l.cache.List(ctx, kv.Key{CachePrefix}) {
		if err != nil {
			return 0, err
		}
		keys = append(keys, e.Key)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := l.cache.BatchDelete(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// CachedFragment describes one cache entry.
type CachedFragment struct {
	Store   string `json:"store" yaml:"store"`
	Path    string `json:"path" yaml:"path"`
	Samples int    `json:"samples" yaml:"samples"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

// Cached lists the fragments in the cache.
func (l *Library) Cached(ctx context.Context) ([]CachedFragment, error) {
	if l.cache == nil {
		return nil, nil
	}
	var out []CachedFragment
	for e, err := range l.cache.List(ctx, kv.Key{CachePrefix}) {
		if err != nil {
			return nil, err
		}
		if len(e.Key) != 3 {
			continue
		}
		var rec cached
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("fragment: decode cache entry %s: %w", e.Key, err)
		}
		out = append(out, CachedFragment{
			Store:   e.Key[1],
			Path:    e.Key[2],
			Samples: len(rec.Samples) / 2,
			Bytes:   len(e.Value),
		})
	}
	return out, nil
}
