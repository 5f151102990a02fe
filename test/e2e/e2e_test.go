package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/embedding"
	"github.com/Asim-Shah-2004/SIH/internal/keyword"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/recommend"
	"github.com/Asim-Shah-2004/SIH/internal/search"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

const e2eDimensions = 8

type e2eStack struct {
	store        storage.Storage
	index        *vector.Manager
	keywordIndex keyword.KeywordIndex
	recommender  *recommend.Engine
	searchEngine *search.Engine
}

func buildStack(t *testing.T, corpus *Corpus) *e2eStack {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "db.sqlite"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Embedding: config.EmbeddingConfig{Dimensions: e2eDimensions, MaxTokens: 64, CacheSize: 100},
	}
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for _, u := range corpus.Users {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user %s: %v", u.ID, err)
		}
	}
	for _, p := range corpus.Posts {
		if err := store.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post %s: %v", p.ID, err)
		}
	}

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	t.Cleanup(func() { _ = embedder.Close() })

	index := vector.NewManager(store, embedder, zap.NewNop(), cfg.Index)
	if err := index.EnsureFresh(ctx); err != nil {
		t.Fatalf("index warmup: %v", err)
	}

	kwIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kwIndex.Close() })
	usersByID := make(map[string]*models.User, len(corpus.Users))
	for _, u := range corpus.Users {
		usersByID[u.ID] = u
	}
	for _, p := range corpus.Posts {
		if err := kwIndex.Index(ctx, p, usersByID[p.AuthorID].FullName); err != nil {
			t.Fatalf("keyword index post %s: %v", p.ID, err)
		}
	}

	return &e2eStack{
		store:        store,
		index:        index,
		keywordIndex: kwIndex,
		recommender:  recommend.NewEngine(store, index, zap.NewNop(), cfg.Recommend),
		searchEngine: search.NewEngine(store, index, kwIndex, cfg.Search),
	}
}

func TestE2E_FeedRanksConnectionPostsFirst(t *testing.T) {
	corpus := BuildCorpus()
	stack := buildStack(t, corpus)
	ctx := context.Background()

	for _, tc := range corpus.FeedCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := stack.recommender.Recommend(ctx, tc.ViewerEmail, len(corpus.Posts))
			if err != nil {
				t.Fatalf("recommend failed: %v", err)
			}
			if len(resp.Recommendations) == 0 {
				t.Fatal("empty feed")
			}

			connectionAuthors := make(map[string]bool, len(tc.ConnectionAuthors))
			for _, id := range tc.ConnectionAuthors {
				connectionAuthors[id] = true
			}

			seen := make(map[string]bool, len(resp.Recommendations))
			sawNonConnection := false
			foundConnAuthors := make(map[string]bool)
			for i, rec := range resp.Recommendations {
				if seen[rec.PostID] {
					t.Errorf("post %s appears twice in the feed", rec.PostID)
				}
				seen[rec.PostID] = true

				isConn := connectionAuthors[rec.AuthorID]
				if isConn != rec.IsConnectionPost {
					t.Errorf("rank %d: post %s IsConnectionPost = %v, author %s connection = %v",
						i, rec.PostID, rec.IsConnectionPost, rec.AuthorID, isConn)
				}
				if isConn {
					foundConnAuthors[rec.AuthorID] = true
					if sawNonConnection {
						t.Errorf("rank %d: connection post %s ranked after a non-connection post",
							i, rec.PostID)
					}
				} else {
					sawNonConnection = true
				}
			}
			for _, id := range tc.ConnectionAuthors {
				if !foundConnAuthors[id] {
					t.Errorf("feed is missing a post from connection %s", id)
				}
			}
		})
	}
}

func TestE2E_FeedExcludesOwnPosts(t *testing.T) {
	corpus := BuildCorpus()
	stack := buildStack(t, corpus)
	ctx := context.Background()

	viewer := corpus.Users[0]
	resp, err := stack.recommender.Recommend(ctx, viewer.Email, len(corpus.Posts))
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	for _, rec := range resp.Recommendations {
		if rec.AuthorID == viewer.ID {
			t.Errorf("feed contains viewer's own post %s", rec.PostID)
		}
	}
}

func TestE2E_SearchReturnsSignaturePosts(t *testing.T) {
	corpus := BuildCorpus()
	stack := buildStack(t, corpus)
	ctx := context.Background()

	for _, tc := range corpus.SearchCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := stack.searchEngine.Search(ctx, &models.SearchQuery{
				Query: tc.Query,
				Limit: len(corpus.Posts),
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			gotIDs := make([]string, 0, len(resp.Results))
			for _, r := range resp.Results {
				gotIDs = append(gotIDs, r.Post.ID)
			}
			if !containsAny(gotIDs, tc.ExpectedPostIDs) {
				t.Errorf("query %q: expected one of %v in results, got %v",
					tc.Query, tc.ExpectedPostIDs, gotIDs)
			}
		})
	}
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool, len(got))
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
