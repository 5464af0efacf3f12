// Package curriculum holds the unit → topic → subtopic reference hierarchy,
// the sources it is loaded from, and the matcher that maps free-text names
// onto it.
package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Source loads curriculum reference data. It is called once per import
// session; the result is treated as immutable.
type Source interface {
	Load(ctx context.Context) (Reference, error)
}

// LoadHierarchy loads ref from src and builds a validated Hierarchy.
func LoadHierarchy(ctx context.Context, src Source) (*Hierarchy, error) {
	ref, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}
	h, err := NewHierarchy(ref)
	if err != nil {
		return nil, fmt.Errorf("building curriculum hierarchy: %w", err)
	}
	return h, nil
}

// KV is the subset of a key/value cache CachedSource needs. Get reports a
// miss with found=false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource serves a JSON snapshot of another source from a cache.
// Cache failures are logged and fall through to the wrapped source.
type CachedSource struct {
	next Source
	kv   KV
	key  string
	ttl  time.Duration
}

// NewCachedSource wraps next with a snapshot stored under key for ttl.
func NewCachedSource(next Source, kv KV, key string, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, kv: kv, key: key, ttl: ttl}
}

func (s *CachedSource) Load(ctx context.Context) (Reference, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	switch {
	case err != nil:
		slog.Warn("curriculum cache read failed", "key", s.key, "error", err)
	case found:
		var ref Reference
		if err := json.Unmarshal(data, &ref); err == nil {
			slog.Debug("curriculum served from cache", "key", s.key)
			return ref, nil
		}
		slog.Warn("discarding corrupt curriculum snapshot", "key", s.key)
	}

	ref, err := s.next.Load(ctx)
	if err != nil {
		return Reference{}, err
	}

	data, err = json.Marshal(ref)
	if err != nil {
		return Reference{}, fmt.Errorf("marshal curriculum snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data, s.ttl); err != nil {
		slog.Warn("curriculum cache write failed", "key", s.key, "error", err)
	}
	return ref, nil
}

// StaticSource serves reference data already in memory.
type StaticSource Reference

func (s StaticSource) Load(context.Context) (Reference, error) {
	return Reference(s), nil
}
