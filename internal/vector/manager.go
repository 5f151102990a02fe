package vector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/embedding"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
)

// SearchResult is a post ID with its L2 distance from the query, ascending.
type SearchResult struct {
	PostID   string
	Distance float64
}

// RebuildStatus describes the outcome of an incremental rebuild.
type RebuildStatus string

const (
	RebuildStatusRebuilt   RebuildStatus = "rebuilt"
	RebuildStatusUpdated   RebuildStatus = "updated"
	RebuildStatusUnchanged RebuildStatus = "unchanged"
)

// Manager owns the post vector index: it loads the persisted snapshot, rebuilds
// it when missing or stale, appends new posts incrementally, and serves searches
// from an in-memory copy. Concurrent rebuild requests for the same index are
// collapsed into one.
type Manager struct {
	store    storage.Storage
	embedder embedding.Embedder
	logger   *zap.Logger
	cfg      config.IndexConfig

	mu        sync.RWMutex
	idx       *FlatIndex
	postIDs   []string
	createdAt time.Time

	rebuilds singleflight.Group
}

// NewManager creates an index manager. Call EnsureFresh before serving searches.
func NewManager(store storage.Storage, embedder embedding.Embedder, logger *zap.Logger, cfg config.IndexConfig) *Manager {
	return &Manager{
		store:    store,
		embedder: embedder,
		logger:   logger,
		cfg:      cfg,
	}
}

// EnsureFresh loads the persisted index if present and fresh, and rebuilds it
// otherwise. A corrupt snapshot triggers a full rebuild rather than an error.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	rec, err := m.store.GetIndexRecord(ctx, m.cfg.Name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			m.logger.Info("no persisted index, building from scratch", zap.String("index", m.cfg.Name))
			_, err = m.RebuildFull(ctx)
			return err
		}
		return fmt.Errorf("load index record: %w", err)
	}

	age := time.Since(rec.CreatedAt)
	if age > time.Duration(m.cfg.StalenessDays)*24*time.Hour {
		m.logger.Info("persisted index is stale, rebuilding",
			zap.String("index", m.cfg.Name),
			zap.Duration("age", age))
		_, err = m.RebuildFull(ctx)
		return err
	}

	idx, err := DeserializeFlatIndex(rec.Data)
	if err != nil {
		m.logger.Warn("persisted index is corrupt, rebuilding",
			zap.String("index", m.cfg.Name),
			zap.Error(err))
		_, err = m.RebuildFull(ctx)
		return err
	}
	if idx.Size() != len(rec.PostIDs) {
		m.logger.Warn("persisted index inconsistent with post IDs, rebuilding",
			zap.String("index", m.cfg.Name),
			zap.Int("vectors", idx.Size()),
			zap.Int("post_ids", len(rec.PostIDs)))
		_, err = m.RebuildFull(ctx)
		return err
	}

	m.mu.Lock()
	m.idx = idx
	m.postIDs = rec.PostIDs
	m.createdAt = rec.CreatedAt
	m.mu.Unlock()

	m.logger.Info("loaded persisted index",
		zap.String("index", m.cfg.Name),
		zap.Int("posts", idx.Size()),
		zap.Duration("age", age))
	return nil
}

// rebuildResult is the shared singleflight payload for full and incremental
// rebuilds. Both operations use the index name as the flight key, so a full
// and an incremental rebuild of the same index never run concurrently; a
// caller that joins an in-flight rebuild of the other kind gets its outcome.
type rebuildResult struct {
	added  int
	status RebuildStatus
}

// RebuildFull re-embeds every post with text, up to the configured cap, and
// replaces both the in-memory index and the persisted snapshot. Concurrent
// callers share a single rebuild.
func (m *Manager) RebuildFull(ctx context.Context) (int, error) {
	v, err, _ := m.rebuilds.Do(m.cfg.Name, func() (interface{}, error) {
		n, err := m.rebuildFull(ctx)
		return rebuildResult{added: n, status: RebuildStatusRebuilt}, err
	})
	if err != nil {
		return 0, err
	}
	return v.(rebuildResult).added, nil
}

func (m *Manager) rebuildFull(ctx context.Context) (int, error) {
	start := time.Now()
	posts, err := m.store.ListPostsWithText(ctx, m.cfg.MaxPosts)
	if err != nil {
		return 0, fmt.Errorf("list posts: %w", err)
	}

	idx, err := NewFlatIndex(m.embedder.Dimensions())
	if err != nil {
		return 0, err
	}
	postIDs := make([]string, 0, len(posts))

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		vec, err := m.embedder.Embed(ctx, post.Text)
		if err != nil {
			return 0, fmt.Errorf("embed post %s: %w", post.ID, err)
		}
		if err := idx.Add([][]float32{vec}); err != nil {
			return 0, err
		}
		postIDs = append(postIDs, post.ID)
	}

	createdAt := time.Now().UTC()
	if err := m.persist(ctx, idx, postIDs, createdAt); err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.idx = idx
	m.postIDs = postIDs
	m.createdAt = createdAt
	m.mu.Unlock()

	m.logger.Info("rebuilt index",
		zap.String("index", m.cfg.Name),
		zap.Int("posts", len(postIDs)),
		zap.Duration("took", time.Since(start)))
	return len(postIDs), nil
}

// RebuildIncremental appends posts created since the current snapshot. Without
// an in-memory index it falls back to a full rebuild. Returns how many posts
// were added and the outcome.
func (m *Manager) RebuildIncremental(ctx context.Context) (int, RebuildStatus, error) {
	v, err, _ := m.rebuilds.Do(m.cfg.Name, func() (interface{}, error) {
		added, status, err := m.rebuildIncremental(ctx)
		return rebuildResult{added: added, status: status}, err
	})
	if err != nil {
		return 0, "", err
	}
	r := v.(rebuildResult)
	return r.added, r.status, nil
}

func (m *Manager) rebuildIncremental(ctx context.Context) (int, RebuildStatus, error) {
	m.mu.RLock()
	idx := m.idx
	since := m.createdAt
	count := len(m.postIDs)
	m.mu.RUnlock()

	if idx == nil {
		n, err := m.rebuildFull(ctx)
		return n, RebuildStatusRebuilt, err
	}

	remaining := m.cfg.MaxPosts - count
	if remaining <= 0 {
		m.logger.Warn("index at capacity, skipping incremental update",
			zap.String("index", m.cfg.Name),
			zap.Int("posts", count))
		return 0, RebuildStatusUnchanged, nil
	}

	posts, err := m.store.ListPostsCreatedAfter(ctx, since, remaining)
	if err != nil {
		return 0, "", fmt.Errorf("list new posts: %w", err)
	}
	if len(posts) == 0 {
		return 0, RebuildStatusUnchanged, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return 0, "", err
		}
		vec, err := m.embedder.Embed(ctx, post.Text)
		if err != nil {
			return 0, "", fmt.Errorf("embed post %s: %w", post.ID, err)
		}
		if err := m.idx.Add([][]float32{vec}); err != nil {
			return 0, "", err
		}
		m.postIDs = append(m.postIDs, post.ID)
	}
	m.createdAt = time.Now().UTC()

	if err := m.persist(ctx, m.idx, m.postIDs, m.createdAt); err != nil {
		return 0, "", err
	}

	m.logger.Info("updated index incrementally",
		zap.String("index", m.cfg.Name),
		zap.Int("added", len(posts)),
		zap.Int("total", len(m.postIDs)))
	return len(posts), RebuildStatusUpdated, nil
}

func (m *Manager) persist(ctx context.Context, idx *FlatIndex, postIDs []string, createdAt time.Time) error {
	rec := &models.IndexRecord{
		Name:       m.cfg.Name,
		Data:       idx.Serialize(),
		PostIDs:    postIDs,
		Dimensions: idx.Dimensions(),
		TotalCount: idx.Size(),
		CreatedAt:  createdAt,
	}
	if err := m.store.SaveIndexRecord(ctx, rec); err != nil {
		return fmt.Errorf("persist index record: %w", err)
	}
	return nil
}

// Search embeds the query text and returns the k nearest posts by L2 distance.
// k is clamped to the index size.
func (m *Manager) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return m.SearchVector(ctx, vec, k)
}

// SearchVector searches with a precomputed embedding.
func (m *Manager) SearchVector(ctx context.Context, vec []float32, k int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.idx == nil || m.idx.Size() == 0 {
		return nil, nil
	}
	if k > m.idx.Size() {
		k = m.idx.Size()
	}
	hits, err := m.idx.Search(vec, k)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		results[i] = SearchResult{PostID: m.postIDs[h.Position], Distance: h.Distance}
	}
	return results, nil
}

// Size returns the number of indexed posts.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.idx == nil {
		return 0
	}
	return m.idx.Size()
}

// CreatedAt returns when the current snapshot was built. Zero if never built.
func (m *Manager) CreatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.createdAt
}
