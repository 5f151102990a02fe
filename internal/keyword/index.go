// Package keyword provides keyword indexing and search over post text.
package keyword

import (
	"context"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

// KeywordIndex defines keyword search operations over posts.
type KeywordIndex interface {
	Index(ctx context.Context, post *models.Post, authorName string) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, postID string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
