package models

import "time"

// InteractionStrength is the persisted affinity score for an ordered
// (source, target) pair. Directional: the reverse pair is a separate record.
type InteractionStrength struct {
	SourceID    string    `json:"source_id" db:"source_id"`
	TargetID    string    `json:"target_id" db:"target_id"`
	Score       float64   `json:"score" db:"score"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// IndexRecord is a persisted vector index snapshot. Data is the serialized
// index structure; PostIDs[i] corresponds to the i-th stored vector.
type IndexRecord struct {
	Name       string    `json:"name" db:"name"`
	Data       []byte    `json:"-" db:"data"`
	PostIDs    []string  `json:"post_ids"`
	Dimensions int       `json:"dimensions" db:"dimensions"`
	TotalCount int       `json:"total_count" db:"total_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
