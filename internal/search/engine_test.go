package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/embedding"
	"github.com/Asim-Shah-2004/SIH/internal/keyword"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

func searchConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultLimit:          10,
		MaxLimit:              100,
		TopKCandidates:        100,
		DefaultKeywordWeight:  0.5,
		DefaultSemanticWeight: 0.5,
	}
}

func newTestEngine(t *testing.T) (*Engine, storage.Storage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	kwIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { kwIndex.Close() })

	manager := vector.NewManager(store, embedding.NewMockEmbedder(16), zap.NewNop(), config.IndexConfig{
		Name:          "posts",
		StalenessDays: 7,
		MaxPosts:      20000,
		SearchK:       100,
	})

	ctx := context.Background()
	posts := []*models.Post{
		{ID: "p1", AuthorID: "u1", Text: "hiring golang engineers", CreatedAt: time.Now().Add(-3 * time.Hour)},
		{ID: "p2", AuthorID: "u1", Text: "reunion photos from 2015", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: "p3", AuthorID: "u2", Text: "golang workshop recording", CreatedAt: time.Now().Add(-time.Hour)},
	}
	for _, p := range posts {
		if err := store.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if err := kwIndex.Index(ctx, p, ""); err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	if err := manager.EnsureFresh(ctx); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}

	return NewEngine(store, manager, kwIndex, searchConfig()), store
}

func TestSearch_Hybrid(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "golang"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results for 'golang'")
	}

	// Both keyword hits must surface with populated posts, ranked.
	found := map[string]bool{}
	for i, r := range resp.Results {
		if r.Post == nil {
			t.Fatal("result missing post")
		}
		found[r.Post.ID] = true
		if r.Rank != i+1 {
			t.Errorf("rank = %d at position %d", r.Rank, i)
		}
	}
	if !found["p1"] || !found["p3"] {
		t.Errorf("expected p1 and p3 among results, got %v", found)
	}
}

func TestSearch_KeywordOnly(t *testing.T) {
	engine, _ := newTestEngine(t)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{
		Query:         "reunion",
		KeywordWeight: 1.0,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Post.ID != "p2" {
		t.Errorf("keyword-only search = %v, want [p2]", resp.Results)
	}
	if resp.Results[0].SemanticScore != 0 {
		t.Errorf("semantic score = %f, want 0 with zero semantic weight", resp.Results[0].SemanticScore)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t)

	if _, err := engine.Search(context.Background(), &models.SearchQuery{Query: ""}); err == nil {
		t.Error("empty query should be rejected")
	}
}

func TestSearch_Pagination(t *testing.T) {
	engine, _ := newTestEngine(t)

	all, err := engine.Search(context.Background(), &models.SearchQuery{Query: "golang", SemanticWeight: 1.0})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if all.Total < 2 {
		t.Fatalf("Total = %d, want at least 2 semantic hits", all.Total)
	}

	page, err := engine.Search(context.Background(), &models.SearchQuery{
		Query:          "golang",
		SemanticWeight: 1.0,
		Limit:          1,
		Offset:         1,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("got %d paged results, want 1", len(page.Results))
	}
	if page.Results[0].Rank != 2 {
		t.Errorf("rank = %d, want 2", page.Results[0].Rank)
	}
	if page.Results[0].Post.ID != all.Results[1].Post.ID {
		t.Errorf("page result %s, want %s", page.Results[0].Post.ID, all.Results[1].Post.ID)
	}
}
