// Package cache holds backend responses shared across requests. Entries are
// keyed by entity tag plus request parameters and expire after a TTL; callers
// drop whole entity groups with InvalidateTag after a mutation.
package cache

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSize = 512
	defaultTTL  = 5 * time.Minute
)

// Store is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	lru  *expirable.LRU[string, []byte]
	size int
	tags map[string]map[string]struct{}
}

// New builds a store holding at most size entries for ttl each.
// Non-positive values fall back to 512 entries and five minutes.
func New(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		lru:  expirable.NewLRU[string, []byte](size, nil, ttl),
		size: size,
		tags: make(map[string]map[string]struct{}),
	}
}

// Key derives the cache key for an entity tag, request path and query.
// Query values are encoded in sorted key order so equal parameter sets share a key.
func Key(tag, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte('|')
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// Get returns a copy of the cached value.
func (s *Store) Get(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	val, ok := s.lru.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), val...), true
}

// Set stores val under key and indexes it by every tag.
func (s *Store) Set(key string, val []byte, tags ...string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Add(key, append([]byte(nil), val...))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
		if len(keys) > 2*s.size {
			s.pruneLocked(keys)
		}
	}
}

// InvalidateTag removes every entry indexed under the given tags and reports
// how many live entries were dropped.
func (s *Store) InvalidateTag(tags ...string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range s.tags[tag] {
			if s.lru.Remove(key) {
				removed++
			}
		}
		delete(s.tags, tag)
	}
	return removed
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.lru.Len()
}

// pruneLocked forgets index entries whose values were evicted or expired.
func (s *Store) pruneLocked(keys map[string]struct{}) {
	for key := range keys {
		if !s.lru.Contains(key) {
			delete(keys, key)
		}
	}
}
