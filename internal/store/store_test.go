package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/jimezsa/jobradar/internal/models"
)

func posting(id, title string) models.Posting {
	return models.Posting{ID: id, Source: "test", Title: title}
}

func ids(postings []models.Posting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryUpsertKeepsFirstInsertionOrder(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	n, err := mem.Upsert(ctx, []models.Posting{posting("a", "A"), posting("b", "B")})
	if err != nil || n != 2 {
		t.Fatalf("Upsert() = %d, %v, want 2, nil", n, err)
	}
	if _, err := mem.Upsert(ctx, []models.Posting{posting("c", "C"), posting("a", "A2")}); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	all, err := mem.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if got := ids(all); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Fatalf("All() ids = %v, want [a b c]", got)
	}
	if all[0].Title != "A2" {
		t.Fatalf("overwrite lost: title = %q, want A2", all[0].Title)
	}
	if n, _ := mem.Len(ctx); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}
}

func TestMemoryAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	p := posting("a", "A")
	p.Skills = []string{"go"}
	if _, err := mem.Upsert(ctx, []models.Posting{p}); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	all, _ := mem.All(ctx)
	all[0].Skills[0] = "mutated"
	all[0].MatchScore = models.Float(1)

	again, _ := mem.All(ctx)
	if again[0].Skills[0] != "go" || again[0].MatchScore != nil {
		t.Fatalf("store state leaked through All(): %+v", again[0])
	}
}

func TestMemoryRejectsMissingID(t *testing.T) {
	mem := NewMemory()
	_, err := mem.Upsert(context.Background(), []models.Posting{posting("", "untitled")})
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	_, _ = mem.Upsert(ctx, []models.Posting{posting("a", "A")})
	if err := mem.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n, _ := mem.Len(ctx); n != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", n)
	}
}

func TestMemoryConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mem.Upsert(ctx, []models.Posting{posting("shared", "S"), posting("x", "X")})
		}()
	}
	wg.Wait()

	if n, _ := mem.Len(ctx); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "postings.json")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	if n, _ := f.Len(ctx); n != 0 {
		t.Fatalf("new store Len() = %d, want 0", n)
	}
	if _, err := f.Upsert(ctx, []models.Posting{posting("a", "A"), posting("b", "B")}); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	all, _ := reopened.All(ctx)
	if got := ids(all); !equalStrings(got, []string{"a", "b"}) {
		t.Fatalf("reopened ids = %v, want [a b]", got)
	}

	if err := reopened.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	empty, err := ReadPostings(path)
	if err != nil {
		t.Fatalf("ReadPostings() error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected cleared file, got %d postings", len(empty))
	}
}

func TestReadPostingsAllowMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	postings, err := ReadPostingsAllowMissing(path)
	if err != nil {
		t.Fatalf("ReadPostingsAllowMissing() error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected empty postings, got %d", len(postings))
	}
}

func TestReadPostingsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	postings, err := ReadPostings(path)
	if err != nil {
		t.Fatalf("ReadPostings() error: %v", err)
	}
	if postings == nil || len(postings) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", postings)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "sqlite"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	s, err := Open(context.Background(), Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("Open(memory) = %T, want *Memory", s)
	}
}

func TestRedisKeys(t *testing.T) {
	r := NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	defer r.Close()

	if got := r.postingsKey(); got != "jobradar:postings" {
		t.Fatalf("postingsKey() = %q, want %q", got, "jobradar:postings")
	}
	if got := r.orderKey(); got != "jobradar:order" {
		t.Fatalf("orderKey() = %q, want %q", got, "jobradar:order")
	}

	custom := NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:0"}), " radar ")
	defer custom.Close()
	if got := custom.seqKey(); got != "radar:seq" {
		t.Fatalf("seqKey() = %q, want %q", got, "radar:seq")
	}
}

func TestDecodePostingsSkipsMissingEntries(t *testing.T) {
	data, err := encodePosting(posting("a", "A"))
	if err != nil {
		t.Fatalf("encodePosting() error: %v", err)
	}
	got, err := decodePostings([]any{string(data), nil})
	if err != nil {
		t.Fatalf("decodePostings() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || got[0].Title != "A" {
		t.Fatalf("decodePostings() = %+v", got)
	}

	if _, err := decodePostings([]any{"{not json"}); err == nil {
		t.Fatalf("expected decode error")
	}
}
