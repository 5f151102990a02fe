// Package integration provides cross-package tests (real storage and indices).
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/embedding"
	"github.com/Asim-Shah-2004/SIH/internal/interaction"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/recommend"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "db.sqlite"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Embedding: config.EmbeddingConfig{Dimensions: 8, MaxTokens: 64, CacheSize: 100},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestIntegration_RecommendationPipeline(t *testing.T) {
	cfg := newConfig(t)
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	alice := &models.User{
		ID: "alice", Email: "alice@example.com", FullName: "Alice",
		Skills:      []string{"go", "distributed systems"},
		Connections: []models.Connection{{PeerID: "bob", Strength: 1.0}},
	}
	bob := &models.User{
		ID: "bob", Email: "bob@example.com", FullName: "Bob",
		Skills:      []string{"go", "databases"},
		Connections: []models.Connection{{PeerID: "alice", Strength: 1.0}},
	}
	carol := &models.User{ID: "carol", Email: "carol@example.com", FullName: "Carol"}
	for _, u := range []*models.User{alice, bob, carol} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	bobPost := &models.Post{
		ID: "post-bob", AuthorID: "bob",
		Text:      "Raft consensus in production Go services",
		Likes:     []models.Engagement{{ActorID: "alice", CreatedAt: now}},
		CreatedAt: now.Add(-2 * time.Hour),
	}
	carolPost := &models.Post{
		ID: "post-carol", AuthorID: "carol",
		Text:      "Weekend photography tips",
		CreatedAt: now.Add(-1 * time.Hour),
	}
	for _, p := range []*models.Post{bobPost, carolPost} {
		if err := store.CreatePost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	defer embedder.Close()
	index := vector.NewManager(store, embedder, zap.NewNop(), cfg.Index)
	if err := index.EnsureFresh(ctx); err != nil {
		t.Fatal(err)
	}

	engine := recommend.NewEngine(store, index, zap.NewNop(), cfg.Recommend)
	resp, err := engine.Recommend(ctx, "alice@example.com", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(resp.Recommendations))
	}
	first := resp.Recommendations[0]
	if first.PostID != "post-bob" {
		t.Errorf("connection post should rank first, got %s", first.PostID)
	}
	if !first.IsConnectionPost {
		t.Error("post-bob should be marked as a connection post")
	}
	if first.InteractionPriority <= 0 {
		t.Errorf("liked connection post should carry priority, got %f", first.InteractionPriority)
	}
	if len(first.Engagements.Likes) != 1 {
		t.Fatalf("expected 1 annotated like, got %d", len(first.Engagements.Likes))
	}
	if !first.Engagements.Likes[0].IsConnection {
		t.Error("alice's like on bob's post should be marked as a connection engagement")
	}
}

func TestIntegration_IncrementalIndexAfterNewPost(t *testing.T) {
	cfg := newConfig(t)
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	author := &models.User{ID: "dana", Email: "dana@example.com", FullName: "Dana"}
	if err := store.CreateUser(ctx, author); err != nil {
		t.Fatal(err)
	}
	if err := store.CreatePost(ctx, &models.Post{
		ID: "post-1", AuthorID: "dana", Text: "first post about goroutines",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	defer embedder.Close()
	index := vector.NewManager(store, embedder, zap.NewNop(), cfg.Index)
	if err := index.EnsureFresh(ctx); err != nil {
		t.Fatal(err)
	}
	if index.Size() != 1 {
		t.Fatalf("index size = %d, want 1", index.Size())
	}

	if err := store.CreatePost(ctx, &models.Post{
		ID: "post-2", AuthorID: "dana", Text: "second post about channels",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}
	added, status, err := index.RebuildIncremental(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 || status != vector.RebuildStatusUpdated {
		t.Errorf("incremental rebuild = (%d, %s), want (1, %s)",
			added, status, vector.RebuildStatusUpdated)
	}
	if index.Size() != 2 {
		t.Errorf("index size = %d, want 2", index.Size())
	}
}

func TestIntegration_InteractionStrengthRoundTrip(t *testing.T) {
	cfg := newConfig(t)
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	source := &models.User{
		ID: "src", Email: "src@example.com", FullName: "Source",
		Skills:      []string{"python", "data science"},
		Connections: []models.Connection{{PeerID: "tgt", Strength: 1.0}},
		WorkExperience: []models.WorkExperience{
			{Company: "Acme", Role: "Senior Engineer"},
		},
	}
	target := &models.User{
		ID: "tgt", Email: "tgt@example.com", FullName: "Target",
		Skills:      []string{"frontend", "design"},
		Connections: []models.Connection{{PeerID: "src", Strength: 1.0}},
		WorkExperience: []models.WorkExperience{
			{Company: "Acme", Role: "Junior Engineer"},
		},
	}
	for _, u := range []*models.User{source, target} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	calc := interaction.NewCalculator(store, zap.NewNop(), cfg.Interaction)
	rec, err := calc.CalculateAndStore(ctx, "src", "tgt")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Score < 0 || rec.Score > 100 {
		t.Errorf("score %f outside [0,100]", rec.Score)
	}

	stored, err := store.GetInteractionStrength(ctx, "src", "tgt")
	if err != nil {
		t.Fatalf("stored strength lookup failed: %v", err)
	}
	if stored.Score != rec.Score {
		t.Errorf("stored score %f != computed score %f", stored.Score, rec.Score)
	}
}
