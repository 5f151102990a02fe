// Package models defines core data structures for users, posts, and recommendations.
package models

import "time"

// User represents a member of the network with profile and connection data.
type User struct {
	ID             string           `json:"id" db:"id"`
	Email          string           `json:"email" db:"email"`
	FullName       string           `json:"full_name" db:"full_name"`
	Skills         []string         `json:"skills,omitempty"`
	Interests      []string         `json:"interests,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	WorkExperience []WorkExperience `json:"work_experience,omitempty"`
	Location       *Location        `json:"location,omitempty"`
	Connections    []Connection     `json:"connections,omitempty"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// Education is one entry of a user's educational history.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        int    `json:"year,omitempty"`
}

// WorkExperience is one entry of a user's employment history.
type WorkExperience struct {
	Company string     `json:"company"`
	Role    string     `json:"role"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// Location holds geographic coordinates. Absent locations are represented
// by a nil *Location, never by zero coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Connection is a directed link from a user to a peer. Strength caches the
// last computed interaction strength (0-100); 0 means "not yet computed"
// and the graph builder substitutes a default edge weight.
type Connection struct {
	PeerID          string     `json:"peer_id"`
	Strength        float64    `json:"strength,omitempty"`
	ConnType        string     `json:"conn_type,omitempty"`
	LastInteraction *time.Time `json:"last_interaction,omitempty"`
}

// IsConnectedTo reports whether peerID appears in the user's connection list.
func (u *User) IsConnectedTo(peerID string) bool {
	for _, c := range u.Connections {
		if c.PeerID == peerID {
			return true
		}
	}
	return false
}

// ConnectionIDs returns the peer IDs of the user's connections in list order.
func (u *User) ConnectionIDs() []string {
	ids := make([]string, len(u.Connections))
	for i, c := range u.Connections {
		ids[i] = c.PeerID
	}
	return ids
}
