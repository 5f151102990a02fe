package models

import "time"

// AnnotatedActor is an engagement entry enriched with the viewer's
// relationship to the actor. Lists of AnnotatedActor are sorted by
// (IsConnection desc, InteractionStrength desc).
type AnnotatedActor struct {
	ActorID             string    `json:"actor_id"`
	Name                string    `json:"name,omitempty"`
	IsConnection        bool      `json:"is_connection"`
	InteractionStrength float64   `json:"interaction_strength"`
	Text                string    `json:"text,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// EngagementBreakdown groups a post's annotated engagement actors by kind.
type EngagementBreakdown struct {
	Likes    []AnnotatedActor `json:"likes"`
	Comments []AnnotatedActor `json:"comments"`
	Shares   []AnnotatedActor `json:"shares"`
}

// AuthorInfo is the author summary attached to a recommendation.
type AuthorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Headline string `json:"headline,omitempty"`
}

// Recommendation is one ranked feed item returned to a requesting user.
type Recommendation struct {
	PostID              string              `json:"post_id"`
	Text                string              `json:"text"`
	AuthorID            string              `json:"author_id"`
	SemanticScore       float64             `json:"semantic_score"`
	InteractionPriority float64             `json:"interaction_priority"`
	IsConnectionPost    bool                `json:"is_connection_post"`
	Author              AuthorInfo          `json:"author"`
	Engagements         EngagementBreakdown `json:"engagements"`
	CreatedAt           time.Time           `json:"created_at"`
}

// RecommendationResponse is the payload for a recommendation request.
type RecommendationResponse struct {
	Recommendations []*Recommendation `json:"recommendations"`
	Total           int               `json:"total"`
	QueryTime       int64             `json:"query_time_ms"`
}
