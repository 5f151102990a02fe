package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/keyword"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

// Engine runs hybrid (keyword + semantic) search over posts.
type Engine struct {
	storage      storage.Storage
	vectorIndex  *vector.Manager
	keywordIndex keyword.KeywordIndex
	config       config.SearchConfig
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	storage storage.Storage,
	vectorIndex *vector.Manager,
	keywordIndex keyword.KeywordIndex,
	cfg config.SearchConfig,
) *Engine {
	return &Engine{
		storage:      storage,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		config:       cfg,
	}
}

// ErrInvalidQuery marks request validation failures so the transport can map
// them to a 400 response.
var ErrInvalidQuery = errors.New("invalid query")

// applyDefaults backfills query defaults from config and validates.
func (e *Engine) applyDefaults(query *models.SearchQuery) error {
	if query.Limit == 0 {
		query.Limit = e.config.DefaultLimit
	}
	if query.Limit > e.config.MaxLimit {
		query.Limit = e.config.MaxLimit
	}
	if query.KeywordWeight == 0 && query.SemanticWeight == 0 {
		query.KeywordWeight = e.config.DefaultKeywordWeight
		query.SemanticWeight = e.config.DefaultSemanticWeight
	}
	if err := query.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

// Search runs both retrieval legs in parallel, fuses the scores, and returns
// post-level results with pagination.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := e.applyDefaults(query); err != nil {
		return nil, err
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []vector.SearchResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if query.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.keywordIndex.Search(ctx, query.Query, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if query.SemanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := e.vectorIndex.Search(ctx, query.Query, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("semantic search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	keywordScores := NormalizeKeywordScores(keywordResults)
	semanticScores := NormalizeSemanticScores(semanticResults)
	fusedResults := Fuse(keywordScores, semanticScores, query.KeywordWeight, query.SemanticWeight)

	if query.MinScore > 0 {
		filtered := fusedResults[:0]
		for _, r := range fusedResults {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fusedResults = filtered
	}

	start := query.Offset
	end := query.Offset + query.Limit
	if start > len(fusedResults) {
		start = len(fusedResults)
	}
	if end > len(fusedResults) {
		end = len(fusedResults)
	}
	pagedResults := fusedResults[start:end]

	response := &models.SearchResponse{
		Results:   make([]*models.SearchResult, 0, len(pagedResults)),
		Total:     len(fusedResults),
		QueryTime: time.Since(startTime).Milliseconds(),
		Query:     query.Query,
	}

	for i, fusedResult := range pagedResults {
		post, err := e.storage.GetPost(ctx, fusedResult.PostID)
		if err != nil {
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Post:          post,
			Score:         fusedResult.Score,
			KeywordScore:  fusedResult.KeywordScore,
			SemanticScore: fusedResult.SemanticScore,
			Rank:          start + i + 1,
		})
	}
	return response, nil
}
