package interaction

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
)

// Breakdown holds each factor score, all in [0, 1], plus the final combined
// score in [0, 100].
type Breakdown struct {
	Professional float64 `json:"professional_proximity"`
	Skill        float64 `json:"skill_resonance"`
	Social       float64 `json:"social_connectivity"`
	Content      float64 `json:"content_interaction"`
	Geographic   float64 `json:"geographic_relevance"`
	Temporal     float64 `json:"temporal_engagement"`
	Serendipity  float64 `json:"serendipity_factor"`
	Score        float64 `json:"score"`
}

// Calculator computes and persists interaction strengths. The randomness
// source is injectable so tests can fix the serendipity factor.
type Calculator struct {
	store  storage.Storage
	logger *zap.Logger
	cfg    config.InteractionConfig
	unif   func() float64
	now    func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithRandSource replaces the uniform random source used for serendipity.
func WithRandSource(unif func() float64) Option {
	return func(c *Calculator) { c.unif = unif }
}

// WithClock replaces the time source used for temporal decay.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator creates a calculator backed by store.
func NewCalculator(store storage.Storage, logger *zap.Logger, cfg config.InteractionConfig, opts ...Option) *Calculator {
	c := &Calculator{
		store:  store,
		logger: logger,
		cfg:    cfg,
		unif:   rand.Float64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate computes the directional interaction strength from source to
// target. The result is not symmetric: content and temporal factors look at
// the target's activity on the source's posts only.
func (c *Calculator) Calculate(ctx context.Context, sourceID, targetID string) (*Breakdown, error) {
	source, err := c.store.GetUser(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("source user: %w", err)
	}
	target, err := c.store.GetUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("target user: %w", err)
	}

	sourcePosts, err := c.store.ListPostsByAuthor(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("source posts: %w", err)
	}

	now := c.now()
	b := &Breakdown{
		Professional: professionalProximity(source, target),
		Skill:        skillResonance(source, target),
		Social:       socialConnectivity(source, target),
		Content:      contentInteraction(sourcePosts, targetID),
		Geographic:   geographicProximity(source, target),
		Temporal:     temporalEngagement(sourcePosts, targetID, now),
		Serendipity:  c.betaSample(0.5, 2),
	}

	weighted := c.cfg.ProfessionalWeight*b.Professional +
		c.cfg.SkillWeight*b.Skill +
		c.cfg.SocialWeight*b.Social +
		c.cfg.ContentWeight*b.Content +
		c.cfg.GeographicWeight*b.Geographic +
		c.cfg.TemporalWeight*b.Temporal +
		c.cfg.SerendipityWeight*b.Serendipity

	b.Score = math.Min(math.Max(weighted*10, 0), 100)

	c.logger.Debug("calculated interaction strength",
		zap.String("source", sourceID),
		zap.String("target", targetID),
		zap.Float64("score", b.Score))
	return b, nil
}

// CalculateAndStore computes the strength and upserts it under the directional
// (source, target) pair. Recalculation overwrites the previous score.
func (c *Calculator) CalculateAndStore(ctx context.Context, sourceID, targetID string) (*models.InteractionStrength, error) {
	b, err := c.Calculate(ctx, sourceID, targetID)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	rec := &models.InteractionStrength{
		SourceID:    sourceID,
		TargetID:    targetID,
		Score:       b.Score,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := c.store.UpsertInteractionStrength(ctx, rec); err != nil {
		return nil, fmt.Errorf("store interaction strength: %w", err)
	}
	return rec, nil
}

// Stored returns the persisted strength for the pair, or storage.ErrNotFound.
func (c *Calculator) Stored(ctx context.Context, sourceID, targetID string) (*models.InteractionStrength, error) {
	return c.store.GetInteractionStrength(ctx, sourceID, targetID)
}

// betaSample draws from a Beta(a, b) distribution with Johnk's algorithm,
// which only needs the uniform source. Beta(0.5, 2) gives mostly small values
// with an occasional large one.
func (c *Calculator) betaSample(a, b float64) float64 {
	for i := 0; i < 1000; i++ {
		x := math.Pow(c.unif(), 1/a)
		y := math.Pow(c.unif(), 1/b)
		if x+y <= 1 {
			if x+y == 0 {
				continue
			}
			return x / (x + y)
		}
	}
	// Pathological uniform sources land here. The mean of Beta(0.5, 2).
	return 0.2
}
