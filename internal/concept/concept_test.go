package concept

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_Basic(t *testing.T) {
	got := Extract("Cache eviction policy: switched cache to LRU eviction")
	want := []string{"cache", "eviction", "policy", "switched", "lru"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract(""); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := Extract("a an to of in"); got != nil {
		t.Errorf("expected nil for stop-word-only text, got %v", got)
	}
}

func TestExtract_DropsShortAndStopTokens(t *testing.T) {
	got := Extract("go is the best and a db is ok")
	for _, c := range got {
		if len(c) < MinTokenLen {
			t.Errorf("short token %q survived", c)
		}
		if stopWords[c] {
			t.Errorf("stop word %q survived", c)
		}
	}
}

func TestExtract_FrequencyRanking(t *testing.T) {
	got := Extract("latency spike latency budget latency spike budget")
	if len(got) != 3 {
		t.Fatalf("expected 3 concepts, got %v", got)
	}
	if got[0] != "latency" {
		t.Errorf("expected most frequent first, got %v", got)
	}
	// spike and budget both occur twice; spike appears first in text
	if got[1] != "spike" || got[2] != "budget" {
		t.Errorf("ties should keep first-occurrence order, got %v", got)
	}
}

func TestExtract_Cap(t *testing.T) {
	words := make([]string, 0, 30)
	for r := 'a'; r < 'a'+30; r++ {
		words = append(words, strings.Repeat(string(r), 4))
	}
	got := Extract(strings.Join(words, " "))
	if len(got) != MaxConcepts {
		t.Errorf("expected cap of %d, got %d", MaxConcepts, len(got))
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "profiling showed allocation churn in the hot path during profiling runs"
	first := Extract(text)
	for i := 0; i < 5; i++ {
		if next := Extract(text); !reflect.DeepEqual(first, next) {
			t.Fatalf("extraction not deterministic: %v vs %v", first, next)
		}
	}
}

func TestExtract_CaseAndBoundaries(t *testing.T) {
	got := Extract("JWT-based auth; jwt tokens, JWT!")
	if got[0] != "jwt" {
		t.Errorf("expected lower-cased jwt first, got %v", got)
	}
}

func TestOverlap(t *testing.T) {
	shared, frac := Overlap([]string{"lru", "eviction"}, []string{"cache", "eviction", "lru", "policy"})
	if shared != 2 || frac != 1.0 {
		t.Errorf("got shared=%d frac=%v, want 2, 1.0", shared, frac)
	}

	shared, frac = Overlap([]string{"lru", "missing"}, []string{"lru"})
	if shared != 1 || frac != 0.5 {
		t.Errorf("got shared=%d frac=%v, want 1, 0.5", shared, frac)
	}

	if shared, frac = Overlap(nil, []string{"x"}); shared != 0 || frac != 0 {
		t.Errorf("empty query should have zero overlap")
	}
}
