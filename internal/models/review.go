package models

import "time"

// Review is one entry in a user's append-only review history. Rating is a
// pointer because the placeholder entry created at registration has no score.
type Review struct {
	Rating    *float64  `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}

// StandaloneReview lives in the legacy reviews collection that predates
// per-user embedding. The write/read endpoints for it are still routed, so
// the collection is kept.
type StandaloneReview struct {
	ID        string    `json:"id"`
	Rating    float64   `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}
