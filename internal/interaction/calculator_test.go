package interaction

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
)

func testConfig() config.InteractionConfig {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg.Interaction
}

func newTestCalculator(t *testing.T, opts ...Option) (*Calculator, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	opts = append([]Option{WithRandSource(func() float64 { return 0.25 })}, opts...)
	return NewCalculator(store, zap.NewNop(), testConfig(), opts...), store
}

func TestSkillResonance(t *testing.T) {
	source := &models.User{Skills: []string{"go", "python", "sql"}}
	target := &models.User{Skills: []string{"go", "java", "rust"}}

	// Jaccard 1/5, no complementary pair.
	got := skillResonance(source, target)
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("skillResonance = %f, want 0.2", got)
	}

	// Complementary pair adds a flat 0.2 bonus.
	target = &models.User{Skills: []string{"data science"}}
	source = &models.User{Skills: []string{"python"}}
	got = skillResonance(source, target)
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("skillResonance with complementary skills = %f, want 0.2", got)
	}

	// Overlap plus bonus, capped at 1.
	source = &models.User{Skills: []string{"python", "frontend"}}
	target = &models.User{Skills: []string{"python", "backend"}}
	want := 1.0/3.0 + 0.2
	got = skillResonance(source, target)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("skillResonance = %f, want %f", got, want)
	}

	// Matching goes skill-into-term only: a phrase longer than the listed
	// term earns no bonus.
	source = &models.User{Skills: []string{"python scripting"}}
	target = &models.User{Skills: []string{"data science"}}
	got = skillResonance(source, target)
	if got != 0 {
		t.Errorf("skillResonance with oversized skill phrase = %f, want 0", got)
	}
}

func TestProfessionalProximity(t *testing.T) {
	source := &models.User{
		WorkExperience: []models.WorkExperience{{Company: "Acme", Role: "Senior Developer"}},
		Education:      []models.Education{{Institution: "IIT Bombay", Degree: "B.Tech"}},
	}
	target := &models.User{
		WorkExperience: []models.WorkExperience{{Company: "Globex", Role: "Junior Developer"}},
		Education:      []models.Education{{Institution: "IIT Delhi", Degree: "B.Tech"}},
	}

	// Similar roles (shared "developer" keyword) 0.5, shared degree 0.3.
	got := professionalProximity(source, target)
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("professionalProximity = %f, want 0.8", got)
	}

	// Many overlaps cap at 1.
	target.WorkExperience = append(target.WorkExperience,
		models.WorkExperience{Company: "Acme", Role: "Engineer"},
		models.WorkExperience{Company: "Acme", Role: "Manager"})
	if got := professionalProximity(source, target); got != 1.0 {
		t.Errorf("professionalProximity = %f, want capped 1.0", got)
	}
}

func TestGeographicProximity(t *testing.T) {
	mumbai := &models.User{Location: &models.Location{Latitude: 19.0760, Longitude: 72.8777}}
	delhi := &models.User{Location: &models.Location{Latitude: 28.7041, Longitude: 77.1025}}

	got := geographicProximity(mumbai, delhi)
	// Mumbai to Delhi is roughly 1150 km, so the score is near 0.885.
	if math.Abs(got-0.885) > 0.01 {
		t.Errorf("geographicProximity = %f, want ~0.885", got)
	}

	if got := geographicProximity(mumbai, &models.User{}); got != 0 {
		t.Errorf("missing location should score 0, got %f", got)
	}

	same := geographicProximity(mumbai, mumbai)
	if math.Abs(same-1.0) > 1e-9 {
		t.Errorf("same location should score 1, got %f", same)
	}
}

func TestSocialConnectivity(t *testing.T) {
	source := &models.User{Connections: []models.Connection{{PeerID: "x"}, {PeerID: "y"}}}
	target := &models.User{Connections: []models.Connection{{PeerID: "x"}, {PeerID: "z"}}}

	// 1 shared over union 3 plus 1.
	got := socialConnectivity(source, target)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("socialConnectivity = %f, want 0.25", got)
	}
}

func TestContentInteraction(t *testing.T) {
	posts := []*models.Post{
		{
			Likes:    []models.Engagement{{ActorID: "target"}},
			Comments: []models.Engagement{{ActorID: "target"}},
		},
		{
			Likes: []models.Engagement{{ActorID: "someone-else"}},
		},
	}

	got := contentInteraction(posts, "target")
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("contentInteraction = %f, want 0.8 (0.3 like + 0.5 comment)", got)
	}

	if got := contentInteraction(posts, "stranger"); got != 0 {
		t.Errorf("no engagements should score 0, got %f", got)
	}
}

func TestTemporalEngagement(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		{
			Likes: []models.Engagement{
				{ActorID: "target", CreatedAt: now},                              // weight 1
				{ActorID: "target", CreatedAt: now.Add(-365 * 24 * time.Hour)},   // weight 0
				{ActorID: "other", CreatedAt: now},                               // ignored
			},
		},
	}

	got := temporalEngagement(posts, "target", now)
	// Sum 1.0 over count 2 plus 1.
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("temporalEngagement = %f, want 1/3", got)
	}
}

func TestBetaSample_FixedUniform(t *testing.T) {
	c, _ := newTestCalculator(t)

	// With u=0.25: x = 0.0625, y = 0.5, sample = 0.0625/0.5625.
	got := c.betaSample(0.5, 2)
	want := 0.0625 / 0.5625
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("betaSample = %f, want %f", got, want)
	}
}

func TestBetaSample_Bounds(t *testing.T) {
	r := uint64(42)
	next := func() float64 {
		r = r*6364136223846793005 + 1442695040888963407
		return float64(r>>11) / float64(1<<53)
	}
	c, _ := newTestCalculator(t, WithRandSource(next))

	for i := 0; i < 1000; i++ {
		v := c.betaSample(0.5, 2)
		if v < 0 || v > 1 {
			t.Fatalf("betaSample out of [0,1]: %f", v)
		}
	}
}

func TestCalculate_ScoreBoundsAndDirection(t *testing.T) {
	c, store := newTestCalculator(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alice := &models.User{
		ID:       "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Skills:   []string{"python"},
		Location: &models.Location{Latitude: 19.0760, Longitude: 72.8777},
	}
	bob := &models.User{
		ID:       "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Skills:   []string{"data science"},
		Location: &models.Location{Latitude: 19.0760, Longitude: 72.8777},
	}
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	// Bob engages with Alice's post; Alice never engages with Bob's.
	post := &models.Post{
		ID:        "p1",
		AuthorID:  "alice",
		Text:      "excited to share my new project",
		Likes:     []models.Engagement{{ActorID: "bob", CreatedAt: now}},
		Comments:  []models.Engagement{{ActorID: "bob", Text: "congrats", CreatedAt: now}},
		CreatedAt: now,
	}
	if err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	forward, err := c.Calculate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	reverse, err := c.Calculate(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("Calculate reverse: %v", err)
	}

	for _, b := range []*Breakdown{forward, reverse} {
		if b.Score < 0 || b.Score > 100 {
			t.Errorf("score out of [0,100]: %f", b.Score)
		}
		for name, f := range map[string]float64{
			"professional": b.Professional, "skill": b.Skill, "social": b.Social,
			"content": b.Content, "geographic": b.Geographic,
			"temporal": b.Temporal, "serendipity": b.Serendipity,
		} {
			if f < 0 || f > 1 {
				t.Errorf("%s factor out of [0,1]: %f", name, f)
			}
		}
	}

	// Direction matters: content factor only sees the target acting on the
	// source's posts.
	if forward.Content == 0 {
		t.Error("alice->bob content factor should be positive")
	}
	if reverse.Content != 0 {
		t.Errorf("bob->alice content factor should be 0, got %f", reverse.Content)
	}
	if forward.Score <= reverse.Score {
		t.Errorf("forward score %f should exceed reverse %f", forward.Score, reverse.Score)
	}
}

func TestCalculateAndStore_Upserts(t *testing.T) {
	c, store := newTestCalculator(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2"} {
		if err := store.CreateUser(ctx, &models.User{ID: id, Email: id + "@example.com"}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	first, err := c.CalculateAndStore(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CalculateAndStore: %v", err)
	}
	second, err := c.CalculateAndStore(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CalculateAndStore again: %v", err)
	}
	_ = first

	stored, err := c.Stored(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Stored: %v", err)
	}
	if stored.Score != second.Score {
		t.Errorf("stored score %f, want latest %f", stored.Score, second.Score)
	}
}

func TestCalculate_UnknownUser(t *testing.T) {
	c, _ := newTestCalculator(t)

	if _, err := c.Calculate(context.Background(), "ghost", "also-ghost"); err == nil {
		t.Error("expected error for unknown users")
	}
}
