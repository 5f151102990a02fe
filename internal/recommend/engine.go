// Package recommend ranks candidate posts for a user by combining connection
// priority, engagement signals, and semantic similarity.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/socialgraph"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
)

// Engagement weights for interaction priority. Engagements by the viewer's
// connections count double.
const (
	likeWeight    = 1.0
	commentWeight = 1.5
	shareWeight   = 2.0

	ageDecayRate = 0.1
)

// Engine produces ranked, annotated recommendations.
type Engine struct {
	store  storage.Storage
	index  *vector.Manager
	logger *zap.Logger
	cfg    config.RecommendConfig
	now    func() time.Time
}

// NewEngine creates a recommendation engine.
func NewEngine(store storage.Storage, index *vector.Manager, logger *zap.Logger, cfg config.RecommendConfig) *Engine {
	return &Engine{
		store:  store,
		index:  index,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

type scoredPost struct {
	post         *models.Post
	semantic     float64
	priority     float64
	isConnection bool
	centrality   float64
}

// Recommend returns up to limit posts for the user with the given email,
// ordered by (connection-authored, interaction priority, semantic score)
// descending. Ties keep candidate enumeration order, connection posts first.
func (e *Engine) Recommend(ctx context.Context, email string, limit int) (*models.RecommendationResponse, error) {
	start := e.now()

	user, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if e.cfg.MaxLimit > 0 && limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	usersByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	candidates, err := e.candidatePool(ctx, user)
	if err != nil {
		return nil, err
	}

	semantic := e.semanticScores(ctx, user)
	now := e.now()

	scored := make([]*scoredPost, 0, len(candidates))
	for _, post := range candidates {
		if _, ok := usersByID[post.AuthorID]; !ok {
			e.logger.Warn("dropping post with unknown author",
				zap.String("post", post.ID),
				zap.String("author", post.AuthorID))
			continue
		}
		scored = append(scored, &scoredPost{
			post:         post,
			semantic:     semantic[post.ID],
			priority:     e.interactionPriority(post, user, now),
			isConnection: user.IsConnectedTo(post.AuthorID),
		})
	}

	e.rank(scored, users)

	seen := make(map[string]bool, len(scored))
	recs := make([]*models.Recommendation, 0, limit)
	for _, sp := range scored {
		if seen[sp.post.ID] {
			continue
		}
		seen[sp.post.ID] = true

		rec, err := e.buildRecommendation(ctx, sp, user, usersByID)
		if err != nil {
			e.logger.Warn("dropping candidate",
				zap.String("post", sp.post.ID),
				zap.Error(err))
			continue
		}
		recs = append(recs, rec)
		if len(recs) >= limit {
			break
		}
	}

	return &models.RecommendationResponse{
		Recommendations: recs,
		Total:           len(recs),
		QueryTime:       e.now().Sub(start).Milliseconds(),
	}, nil
}

// candidatePool returns connection-authored posts first, then everyone
// else's, excluding the user's own posts.
func (e *Engine) candidatePool(ctx context.Context, user *models.User) ([]*models.Post, error) {
	posts, err := e.store.ListPostsWithText(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	var connectionPosts, otherPosts []*models.Post
	for _, post := range posts {
		if post.AuthorID == user.ID {
			continue
		}
		if user.IsConnectedTo(post.AuthorID) {
			connectionPosts = append(connectionPosts, post)
		} else {
			otherPosts = append(otherPosts, post)
		}
	}
	return append(connectionPosts, otherPosts...), nil
}

// semanticScores maps post ID to 1/(1+L2 distance) between the post and the
// user's concatenated post text. Users with no posts, and failures in the
// index or embedder, degrade to all-zero scores.
func (e *Engine) semanticScores(ctx context.Context, user *models.User) map[string]float64 {
	scores := make(map[string]float64)

	ownPosts, err := e.store.ListPostsByAuthor(ctx, user.ID)
	if err != nil {
		e.logger.Warn("loading user posts for semantic query failed", zap.Error(err))
		return scores
	}
	var texts []string
	for _, p := range ownPosts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	if len(texts) == 0 {
		return scores
	}

	results, err := e.index.Search(ctx, strings.Join(texts, " "), e.index.Size())
	if err != nil {
		e.logger.Warn("semantic search failed, ranking on social signals only", zap.Error(err))
		return scores
	}
	for _, r := range results {
		scores[r.PostID] = 1 / (1 + r.Distance)
	}
	return scores
}

// interactionPriority sums engagement weights, doubled when the engaging
// actor is one of the viewer's connections, then decays exponentially with
// post age.
func (e *Engine) interactionPriority(post *models.Post, viewer *models.User, now time.Time) float64 {
	var score float64
	for _, eng := range post.Likes {
		score += engagementWeight(likeWeight, viewer.IsConnectedTo(eng.ActorID))
	}
	for _, eng := range post.Comments {
		score += engagementWeight(commentWeight, viewer.IsConnectedTo(eng.ActorID))
	}
	for _, eng := range post.Shares {
		score += engagementWeight(shareWeight, viewer.IsConnectedTo(eng.ActorID))
	}
	return score * math.Exp(-ageDecayRate*post.AgeDays(now))
}

func engagementWeight(base float64, isConnection bool) float64 {
	if isConnection {
		return base * 2
	}
	return base
}

// rank orders candidates by the strict lexicographic key. When every key is
// zero the ordering is degenerate, so author centrality over the social graph
// breaks the symmetry; if centrality cannot converge, enumeration order stays.
func (e *Engine) rank(scored []*scoredPost, users []*models.User) {
	degenerate := true
	for _, sp := range scored {
		if sp.isConnection || sp.priority != 0 || sp.semantic != 0 {
			degenerate = false
			break
		}
	}
	if degenerate {
		if len(scored) < 2 {
			return
		}
		graph := socialgraph.Build(users)
		centrality, ok := graph.Centrality()
		if !ok {
			return
		}
		for _, sp := range scored {
			sp.centrality = centrality[sp.post.AuthorID]
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].centrality > scored[j].centrality
		})
		return
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.isConnection != b.isConnection {
			return a.isConnection
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.semantic > b.semantic
	})
}

func (e *Engine) buildRecommendation(ctx context.Context, sp *scoredPost, viewer *models.User, usersByID map[string]*models.User) (*models.Recommendation, error) {
	author := usersByID[sp.post.AuthorID]

	engagements, err := e.annotateEngagements(ctx, sp.post, viewer, usersByID)
	if err != nil {
		return nil, err
	}

	return &models.Recommendation{
		PostID:              sp.post.ID,
		Text:                sp.post.Text,
		AuthorID:            sp.post.AuthorID,
		SemanticScore:       sp.semantic,
		InteractionPriority: sp.priority,
		IsConnectionPost:    sp.isConnection,
		Author:              *authorInfo(author),
		Engagements:         *engagements,
		CreatedAt:           sp.post.CreatedAt,
	}, nil
}

// AnnotatePost annotates a post's engagements from the given perspective
// user, for the post-details surface.
func (e *Engine) AnnotatePost(ctx context.Context, post *models.Post, perspective *models.User) (*models.EngagementBreakdown, error) {
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	usersByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	return e.annotateEngagements(ctx, post, perspective, usersByID)
}

// annotateEngagements labels every engaging actor with connection status and
// stored interaction strength relative to the perspective user, each list
// sorted by (isConnection, strength) descending.
func (e *Engine) annotateEngagements(ctx context.Context, post *models.Post, perspective *models.User, usersByID map[string]*models.User) (*models.EngagementBreakdown, error) {
	annotate := func(engagements []models.Engagement) ([]models.AnnotatedActor, error) {
		actors := make([]models.AnnotatedActor, 0, len(engagements))
		for _, eng := range engagements {
			actor := models.AnnotatedActor{
				ActorID:      eng.ActorID,
				IsConnection: perspective.IsConnectedTo(eng.ActorID),
				Text:         eng.Text,
				CreatedAt:    eng.CreatedAt,
			}
			if u, ok := usersByID[eng.ActorID]; ok {
				actor.Name = u.FullName
			}
			strength, err := e.store.GetInteractionStrength(ctx, perspective.ID, eng.ActorID)
			switch {
			case err == nil:
				actor.InteractionStrength = strength.Score
			case errors.Is(err, storage.ErrNotFound):
				// No cached strength, leave at zero.
			default:
				return nil, fmt.Errorf("interaction strength for %s: %w", eng.ActorID, err)
			}
			actors = append(actors, actor)
		}
		sort.SliceStable(actors, func(i, j int) bool {
			if actors[i].IsConnection != actors[j].IsConnection {
				return actors[i].IsConnection
			}
			return actors[i].InteractionStrength > actors[j].InteractionStrength
		})
		return actors, nil
	}

	likes, err := annotate(post.Likes)
	if err != nil {
		return nil, err
	}
	comments, err := annotate(post.Comments)
	if err != nil {
		return nil, err
	}
	shares, err := annotate(post.Shares)
	if err != nil {
		return nil, err
	}
	return &models.EngagementBreakdown{Likes: likes, Comments: comments, Shares: shares}, nil
}

func authorInfo(u *models.User) *models.AuthorInfo {
	info := &models.AuthorInfo{
		ID:    u.ID,
		Name:  u.FullName,
		Email: u.Email,
	}
	if len(u.WorkExperience) > 0 {
		w := u.WorkExperience[0]
		switch {
		case w.Role != "" && w.Company != "":
			info.Headline = w.Role + " at " + w.Company
		case w.Role != "":
			info.Headline = w.Role
		case w.Company != "":
			info.Headline = w.Company
		}
	}
	return info
}
