// Package e2e provides end-to-end tests with a seeded social graph and feed expectations.
package e2e

import (
	"fmt"
	"time"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

// FeedTestCase defines a viewer and the ranking properties their feed must satisfy.
// ConnectionAuthors lists the author IDs whose posts must rank before any
// non-connection post in the viewer's feed.
type FeedTestCase struct {
	ViewerEmail       string
	ConnectionAuthors []string
	Description       string
}

// SearchTestCase defines a query and the post ID(s) that must appear in results.
type SearchTestCase struct {
	Query           string
	ExpectedPostIDs []string
	Description     string
}

// Corpus holds users, posts, and test cases for E2E tests.
type Corpus struct {
	Users       []*models.User
	Posts       []*models.Post
	FeedCases   []FeedTestCase
	SearchCases []SearchTestCase
}

// BuildCorpus returns a social corpus: a ring of users where each user is
// connected to its two neighbors, one post per user with a unique signature
// phrase, and engagements so that connection posts carry priority.
func BuildCorpus() *Corpus {
	topics := []struct {
		phrase string
		text   string
	}{
		{"distributed consensus raft", "Notes on distributed consensus. The raft protocol elects a leader and replicates a log."},
		{"gradient descent optimizer", "Training deep models with a gradient descent optimizer and learning rate schedules."},
		{"kubernetes pod scheduling", "How kubernetes pod scheduling places workloads across nodes with taints and affinity."},
		{"postgres query planner", "Reading explain output from the postgres query planner to fix slow joins."},
		{"goroutine channel pipeline", "Building a goroutine channel pipeline with fan-out workers and bounded queues."},
		{"react server components", "Why react server components change data fetching for large frontends."},
		{"terraform state locking", "Terraform state locking with remote backends prevents concurrent applies."},
		{"kafka consumer rebalance", "Surviving a kafka consumer rebalance without duplicate processing."},
		{"bcrypt password hashing", "Why bcrypt password hashing beats fast digests for credential storage."},
		{"grpc streaming backpressure", "Handling grpc streaming backpressure with flow control windows."},
		{"vector embeddings retrieval", "Using vector embeddings retrieval to ground answers in real documents."},
		{"sqlite write ahead log", "The sqlite write ahead log lets readers proceed during commits."},
	}

	now := time.Now().UTC()
	n := len(topics)
	users := make([]*models.User, n)
	for i := range users {
		id := fmt.Sprintf("e2e-user-%02d", i+1)
		users[i] = &models.User{
			ID:       id,
			Email:    fmt.Sprintf("user%02d@example.com", i+1),
			FullName: fmt.Sprintf("E2E User %02d", i+1),
			Skills:   []string{"go", topics[i].phrase},
			WorkExperience: []models.WorkExperience{
				{Company: "Example Corp", Role: "Engineer"},
			},
			CreatedAt: now.AddDate(0, -6, 0),
			UpdatedAt: now,
		}
	}
	// Ring topology: each user connects to the previous and next user.
	for i := range users {
		prev := (i + n - 1) % n
		next := (i + 1) % n
		users[i].Connections = []models.Connection{
			{PeerID: users[prev].ID, Strength: 1.0},
			{PeerID: users[next].ID, Strength: 1.0},
		}
	}

	posts := make([]*models.Post, n)
	for i := range posts {
		posts[i] = &models.Post{
			ID:        fmt.Sprintf("e2e-post-%02d", i+1),
			AuthorID:  users[i].ID,
			Text:      topics[i].text,
			CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
		}
	}
	// Each post is liked by the author's next neighbor so connection posts
	// carry engagement priority for adjacent viewers.
	for i := range posts {
		liker := users[(i+1)%n]
		posts[i].Likes = []models.Engagement{
			{ActorID: liker.ID, CreatedAt: now.Add(-30 * time.Minute)},
		}
	}

	feedCases := make([]FeedTestCase, 0, 3)
	for _, i := range []int{0, 4, 9} {
		prev := (i + n - 1) % n
		next := (i + 1) % n
		feedCases = append(feedCases, FeedTestCase{
			ViewerEmail:       users[i].Email,
			ConnectionAuthors: []string{users[prev].ID, users[next].ID},
			Description:       fmt.Sprintf("feed for %s ranks connection posts first", users[i].Email),
		})
	}

	searchCases := make([]SearchTestCase, 0, len(topics))
	for i, topic := range topics {
		searchCases = append(searchCases, SearchTestCase{
			Query:           topic.phrase,
			ExpectedPostIDs: []string{posts[i].ID},
			Description:     fmt.Sprintf("query %q should return post %s", topic.phrase, posts[i].ID),
		})
	}

	return &Corpus{
		Users:       users,
		Posts:       posts,
		FeedCases:   feedCases,
		SearchCases: searchCases,
	}
}
