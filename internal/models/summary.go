package models

import "time"

// RatingSummary is the precomputed aggregate over a user's review history.
// AverageRating is nil while the history holds only the placeholder entry.
type RatingSummary struct {
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	ReviewCount   int       `json:"reviewCount"`
	AverageRating *float64  `json:"averageRating"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
