// Package memory implements vectorstore.Store with brute-force cosine
// similarity. It backs tests and keyless local runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/shersomas/manualbot/internal/vectorstore"
)

// Store keeps namespaced entries in memory.
type Store struct {
	mu         sync.RWMutex
	dimension  int
	indexName  string
	namespaces map[string]map[string]vectorstore.Entry
}

func NewStore() *Store {
	return &Store{namespaces: make(map[string]map[string]vectorstore.Entry)}
}

// EnsureIndex records the index name and dimension. Re-ensuring an existing
// index is a no-op; existing entries are kept.
func (s *Store) EnsureIndex(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexName == name && s.dimension == dimension {
		return nil
	}
	if s.indexName != "" && s.indexName != name {
		return fmt.Errorf("memory store already holds index %q", s.indexName)
	}
	s.indexName = name
	s.dimension = dimension
	return nil
}

// Upsert inserts or overwrites entries by ID within the namespace.
func (s *Store) Upsert(ctx context.Context, namespace string, entries []vectorstore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return &vectorstore.UploadError{Namespace: namespace, Err: fmt.Errorf("index not ensured")}
	}
	ns := s.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]vectorstore.Entry)
		s.namespaces[namespace] = ns
	}
	for _, e := range entries {
		if len(e.Values) != s.dimension {
			return &vectorstore.UploadError{
				Namespace: namespace,
				Err:       fmt.Errorf("entry %s: dimension %d != index dimension %d", e.ID, len(e.Values), s.dimension),
			}
		}
		ns[e.ID] = e
	}
	return nil
}

// Query ranks namespace entries by cosine similarity to vector, returning
// at most topK. An unknown or empty namespace yields an empty result.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}

	ns := s.namespaces[namespace]
	matches := make([]vectorstore.Match, 0, len(ns))
	for _, e := range ns {
		m := vectorstore.Match{
			ID:    e.ID,
			Score: cosine(vector, e.Values),
		}
		if includeMetadata {
			m.Metadata = e.Metadata
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len reports the number of entries in a namespace.
func (s *Store) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

func cosine(a, b []float32) float32 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
