// Package storage defines the persistence interface for users, posts,
// interaction strengths, and vector index snapshots.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage defines persistence operations for the recommendation engine.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Post operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	// ListPostsWithText returns up to limit posts with non-empty text,
	// oldest first so index positions stay chronological. A non-positive
	// limit returns all matching posts.
	ListPostsWithText(ctx context.Context, limit int) ([]*models.Post, error)
	// ListPostsCreatedAfter returns up to limit posts with non-empty text
	// created strictly after t, oldest first.
	ListPostsCreatedAfter(ctx context.Context, t time.Time, limit int) ([]*models.Post, error)
	AppendEngagement(ctx context.Context, postID string, kind models.EngagementKind, e models.Engagement) error
	CountPosts(ctx context.Context) (int64, error)

	// Interaction strength operations (directional pair key, upsert only)
	UpsertInteractionStrength(ctx context.Context, rec *models.InteractionStrength) error
	GetInteractionStrength(ctx context.Context, sourceID, targetID string) (*models.InteractionStrength, error)

	// Vector index snapshots, one per logical index name
	SaveIndexRecord(ctx context.Context, rec *models.IndexRecord) error
	GetIndexRecord(ctx context.Context, name string) (*models.IndexRecord, error)

	Close() error
}
