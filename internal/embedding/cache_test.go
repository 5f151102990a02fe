package embedding

import (
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	cache := NewEmbeddingCache(10)

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}

	emb := []float32{1, 2, 3}
	cache.Set("hello", emb)

	got, ok := cache.Get("hello")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("got %v, want %v", got, emb)
	}
}

func TestEmbeddingCache_Eviction(t *testing.T) {
	cache := NewEmbeddingCache(2)

	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})
	cache.Set("c", []float32{3})

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestEmbeddingCache_LRUOrder(t *testing.T) {
	cache := NewEmbeddingCache(2)

	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})

	// Touch "a" so "b" becomes the eviction candidate.
	cache.Get("a")
	cache.Set("c", []float32{3})

	if _, ok := cache.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := cache.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
}
