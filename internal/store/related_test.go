package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRelated_UnknownID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Related(context.Background(), "missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Related(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRelated_OrderedBySharedConcepts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anchor, err := s.Store(ctx, StoreParams{Content: "database connection pooling tuning"})
	if err != nil {
		t.Fatal(err)
	}
	strong, err := s.Store(ctx, StoreParams{Content: "database connection pooling guide"})
	if err != nil {
		t.Fatal(err)
	}
	weak, err := s.Store(ctx, StoreParams{Content: "database backup schedule"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Store(ctx, StoreParams{Content: "frontend rendering pipeline"}); err != nil {
		t.Fatal(err)
	}

	related, err := s.Related(ctx, anchor.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(related) != 2 {
		t.Fatalf("len(related) = %d, want 2", len(related))
	}
	if related[0].ID != strong.ID {
		t.Errorf("related[0].ID = %s, want %s", related[0].ID, strong.ID)
	}
	if related[0].SharedConcepts != 3 {
		t.Errorf("related[0].SharedConcepts = %d, want 3", related[0].SharedConcepts)
	}
	if related[1].ID != weak.ID {
		t.Errorf("related[1].ID = %s, want %s", related[1].ID, weak.ID)
	}
	if related[1].SharedConcepts != 1 {
		t.Errorf("related[1].SharedConcepts = %d, want 1", related[1].SharedConcepts)
	}
}

func TestRelated_NoSharedConcepts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry, err := s.Store(ctx, StoreParams{Content: "kubernetes ingress controller"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Store(ctx, StoreParams{Content: "quarterly budget review"}); err != nil {
		t.Fatal(err)
	}

	related, err := s.Related(ctx, entry.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(related) != 0 {
		t.Fatalf("len(related) = %d, want 0", len(related))
	}
}

func TestRelated_LimitAndSnippet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anchor, err := s.Store(ctx, StoreParams{Content: "caching strategy notes"})
	if err != nil {
		t.Fatal(err)
	}
	long := "caching " + strings.Repeat("x", 200)
	if _, err := s.Store(ctx, StoreParams{Content: long}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Store(ctx, StoreParams{Content: "caching layer design"}); err != nil {
		t.Fatal(err)
	}

	related, err := s.Related(ctx, anchor.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(related) != 1 {
		t.Fatalf("len(related) = %d, want 1", len(related))
	}

	all, err := s.Related(ctx, anchor.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range all {
		if len([]rune(r.Snippet)) > snippetLen+3 {
			t.Errorf("snippet too long: %d runes", len([]rune(r.Snippet)))
		}
	}
}

func TestRelated_AccessCountUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anchor, err := s.Store(ctx, StoreParams{Content: "storage engine compaction"})
	if err != nil {
		t.Fatal(err)
	}
	other, err := s.Store(ctx, StoreParams{Content: "storage engine internals"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Related(ctx, anchor.ID, 0); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recall(ctx, other.ID)
	if err != nil {
		t.Fatal(err)
	}
	// Recall itself counts as one access; Related must not have added another.
	if got.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", got.AccessCount)
	}
}
