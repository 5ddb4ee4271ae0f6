package memory

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
)

// hashEmbedder maps texts onto fixed axes so similarity ordering is
// deterministic without a real embedding backend.
type hashEmbedder struct{}

func (hashEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, 8)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			var h uint32
			for _, c := range word {
				h = h*31 + uint32(c)
			}
			vec[h%8]++
		}
		out[i] = vec
	}
	return out, nil
}

func TestGetMemoriesRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewStore("bull_memory", hashEmbedder{})

	err := store.AddSituations(ctx, []Record{
		{Situation: "high inflation rising rates tech selloff", Recommendation: "trim growth exposure"},
		{Situation: "strong earnings beat with raised guidance", Recommendation: "add on strength"},
		{Situation: "regulatory probe announced against the company", Recommendation: "cut the position"},
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := store.GetMemories(ctx, "earnings beat and raised guidance", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Recommendation != "add on strength" {
		t.Fatalf("top match = %q, want the earnings memory", matches[0].Recommendation)
	}
	if matches[0].SimilarityScore < matches[1].SimilarityScore {
		t.Fatalf("matches not sorted by similarity: %v then %v",
			matches[0].SimilarityScore, matches[1].SimilarityScore)
	}
	if matches[0].SimilarityScore < 0 || matches[0].SimilarityScore > 1 {
		t.Fatalf("similarity out of range: %v", matches[0].SimilarityScore)
	}
}

func TestGetMemoriesEmptyStore(t *testing.T) {
	store := NewStore("trader_memory", hashEmbedder{})
	matches, err := store.GetMemories(context.Background(), "anything", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("empty store returned %d matches", len(matches))
	}
}

func TestConcurrentAddAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewStore("judge_memory", hashEmbedder{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.AddSituations(ctx, []Record{
				{Situation: "volatile open weak close", Recommendation: "wait"},
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.GetMemories(ctx, "volatile session", 1)
		}()
	}
	wg.Wait()

	if store.Len() != 8 {
		t.Fatalf("store has %d records, want 8", store.Len())
	}
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewStore("bear_memory", hashEmbedder{})
	if err := store.AddSituations(ctx, []Record{
		{Situation: "breadth narrowing beneath index highs", Recommendation: "hedge"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.Flush(ctx, store); err != nil {
		t.Fatal(err)
	}

	restored := NewStore("bear_memory", hashEmbedder{})
	if err := db.LoadInto(ctx, restored); err != nil {
		t.Fatal(err)
	}
	if restored.Len() != 1 {
		t.Fatalf("restored %d records, want 1", restored.Len())
	}

	matches, err := restored.GetMemories(ctx, "index breadth narrowing", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Recommendation != "hedge" {
		t.Fatalf("restored matches = %+v", matches)
	}
	if matches[0].SimilarityScore <= 0 {
		t.Fatalf("restored embedding lost, score = %v", matches[0].SimilarityScore)
	}
}
