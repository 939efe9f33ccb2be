package models

import "time"

// User represents a registered account together with its embedded review
// history. The password hash stays server-side: it is deliberately not
// serializable, so no handler can leak it by returning the full record.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	RatingLink   string    `json:"ratingLink,omitempty"`
	Admin        bool      `json:"admin"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	Reviews      []Review  `json:"reviews"`
}
