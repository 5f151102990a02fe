package models

import "fmt"

// SearchQuery is a hybrid post-search request.
type SearchQuery struct {
	Query          string  `json:"query"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
	KeywordWeight  float64 `json:"keyword_weight,omitempty"`
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
	MinScore       float64 `json:"min_score,omitempty"`
}

// Validate checks query invariants after defaults are applied.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("limit and offset must be non-negative")
	}
	if q.KeywordWeight < 0 || q.SemanticWeight < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if q.KeywordWeight == 0 && q.SemanticWeight == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

// SearchResult is a single post-level hit.
type SearchResult struct {
	Post          *Post   `json:"post"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
	Rank          int     `json:"rank"`
}

// SearchResponse is the full result of a hybrid search.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}
