// Package memory stores past deliberation situations with their lessons and
// retrieves the closest ones by embedding similarity. Each agent family keeps
// its own named collection so bull lessons never surface in bear prompts.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
)

// Record pairs a market situation with the recommendation learned from it.
type Record struct {
	Situation      string
	Recommendation string
	embedding      []float64
}

// Match is a retrieved record with its similarity score in [0, 1] where 1 is
// an exact match. The score is one minus cosine distance.
type Match struct {
	MatchedSituation string
	Recommendation   string
	SimilarityScore  float64
}

// Store is an append-only in-memory collection of situation records. Safe for
// concurrent use.
type Store struct {
	name     string
	embedder embedding.Embedder

	mu      sync.RWMutex
	records []Record
}

// NewStore creates an empty named store backed by the given embedder.
func NewStore(name string, embedder embedding.Embedder) *Store {
	return &Store{name: name, embedder: embedder}
}

// Name returns the collection name the store was created with.
func (s *Store) Name() string { return s.name }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AddSituations embeds and appends situation/recommendation pairs. The texts
// are embedded in one batch call before the lock is taken.
func (s *Store) AddSituations(ctx context.Context, pairs []Record) error {
	if len(pairs) == 0 {
		return nil
	}

	texts := make([]string, len(pairs))
	for i, p := range pairs {
		texts[i] = p.Situation
	}
	vectors, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed situations for %s: %w", s.name, err)
	}
	if len(vectors) != len(pairs) {
		return fmt.Errorf("embedder returned %d vectors for %d situations", len(vectors), len(pairs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range pairs {
		p.embedding = vectors[i]
		s.records = append(s.records, p)
	}
	return nil
}

// GetMemories returns up to n records closest to the situation, most similar
// first. An empty store yields an empty slice, not an error.
func (s *Store) GetMemories(ctx context.Context, situation string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{situation})
	if err != nil {
		return nil, fmt.Errorf("embed query for %s: %w", s.name, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	query := vectors[0]

	s.mu.RLock()
	matches := make([]Match, 0, len(s.records))
	for _, rec := range s.records {
		matches = append(matches, Match{
			MatchedSituation: rec.Situation,
			Recommendation:   rec.Recommendation,
			SimilarityScore:  cosineSimilarity(query, rec.embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
