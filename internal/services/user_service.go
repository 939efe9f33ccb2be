package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raterly/raterly-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// RegisterParams carries the fields accepted at registration.
type RegisterParams struct {
	Email      string
	Password   string
	Phone      string
	Address    string
	Username   string
	RatingLink string
}

// UserUpdate carries a partial update. A nil field is left unchanged. String
// fields are applied only when non-empty; the booleans are applied whenever
// present, so an explicit false clears a flag.
type UserUpdate struct {
	Email      *string
	Password   *string
	Username   *string
	RatingLink *string
	Active     *bool
	Admin      *bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(p RegisterParams) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetAllUsers() ([]models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	UpdateUser(id string, upd UserUpdate) (models.User, error)
	AppendReview(username string, rating *float64, review string) error
	GetRatingSummary(username string) (models.RatingSummary, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user with a hashed password and the placeholder
// review entry. Uniqueness of email and username is enforced by the store's
// UNIQUE constraints rather than a check-then-insert sequence, so two
// concurrent registrations for the same email cannot race past each other.
func (s *UserService) Register(p RegisterParams) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: string(hashedPassword),
		Phone:        p.Phone,
		Address:      p.Address,
		RatingLink:   p.RatingLink,
		CreatedAt:    now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO users (id, email, username, password_hash, phone, address, rating_link, admin, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Phone, user.Address, user.RatingLink, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}

	// Placeholder history entry with a null rating.
	_, err = tx.Exec(
		"INSERT INTO user_reviews (user_id, rating, review, created_at) VALUES (?, NULL, '', ?)",
		user.ID, now,
	)
	if err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	user.Reviews = []models.Review{{Rating: nil, Review: "", CreatedAt: now}}
	return user, nil
}

// Authenticate verifies a user's credentials and returns the matching user.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		"SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

const userColumns = "id, email, username, password_hash, phone, address, rating_link, admin, active, created_at"

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Phone,
		&user.Address, &user.RatingLink, &user.Admin, &user.Active, &user.CreatedAt)
	return user, err
}

// GetAllUsers retrieves every user with their review histories attached.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	index := make(map[string]int)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.Reviews = []models.Review{}
		index[user.ID] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reviewRows, err := s.db.Query("SELECT user_id, rating, review, created_at FROM user_reviews ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var userID string
		review, err := scanReview(reviewRows, &userID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Reviews = append(users[i].Reviews, review)
		}
	}
	return users, reviewRows.Err()
}

func scanReview(row interface{ Scan(...interface{}) error }, userID *string) (models.Review, error) {
	var review models.Review
	var rating sql.NullFloat64
	if err := row.Scan(userID, &rating, &review.Review, &review.CreatedAt); err != nil {
		return models.Review{}, err
	}
	if rating.Valid {
		review.Rating = &rating.Float64
	}
	return review, nil
}

// GetUserByID retrieves a single user by their ID, reviews included.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	return s.getUser("id", id)
}

// GetUserByUsername retrieves a single user by username, reviews included.
func (s *UserService) GetUserByUsername(username string) (models.User, error) {
	return s.getUser("username", username)
}

func (s *UserService) getUser(column, value string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	rows, err := s.db.Query(
		"SELECT user_id, rating, review, created_at FROM user_reviews WHERE user_id = ? ORDER BY seq", user.ID)
	if err != nil {
		return models.User{}, err
	}
	defer rows.Close()

	user.Reviews = []models.Review{}
	for rows.Next() {
		var userID string
		review, err := scanReview(rows, &userID)
		if err != nil {
			return models.User{}, err
		}
		user.Reviews = append(user.Reviews, review)
	}
	return user, rows.Err()
}

// UpdateUser applies a partial update to a user. See UserUpdate for the
// field-application policy. The password, when provided, is re-hashed.
func (s *UserService) UpdateUser(id string, upd UserUpdate) (models.User, error) {
	sets := []string{}
	args := []interface{}{}

	if upd.Email != nil && *upd.Email != "" {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Username != nil && *upd.Username != "" {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.RatingLink != nil && *upd.RatingLink != "" {
		sets = append(sets, "rating_link = ?")
		args = append(args, *upd.RatingLink)
	}
	if upd.Password != nil && *upd.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hashedPassword))
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *upd.Active)
	}
	if upd.Admin != nil {
		sets = append(sets, "admin = ?")
		args = append(args, *upd.Admin)
	}

	if len(sets) == 0 {
		return s.GetUserByID(id)
	}

	args = append(args, id)
	res, err := s.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if n == 0 {
		return models.User{}, ErrNotFound
	}

	return s.GetUserByID(id)
}

// AppendReview appends one entry to the named user's review history. The
// insert is keyed on the username in a single statement, so there is no gap
// between the existence check and the write.
func (s *UserService) AppendReview(username string, rating *float64, review string) error {
	res, err := s.db.Exec(
		`INSERT INTO user_reviews (user_id, rating, review, created_at)
		 SELECT id, ?, ?, ? FROM users WHERE username = ?`,
		rating, review, time.Now().UTC(), username,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRatingSummary returns the precomputed aggregate for a user, computing
// it on the fly when the background updater has not run yet.
func (s *UserService) GetRatingSummary(username string) (models.RatingSummary, error) {
	var summary models.RatingSummary
	summary.Username = username

	err := s.db.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&summary.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.RatingSummary{}, ErrNotFound
		}
		return models.RatingSummary{}, err
	}

	var avg sql.NullFloat64
	err = s.db.QueryRow(
		"SELECT review_count, average_rating, updated_at FROM rating_summaries WHERE user_id = ?",
		summary.UserID,
	).Scan(&summary.ReviewCount, &avg, &summary.UpdatedAt)
	if err == sql.ErrNoRows {
		err = s.db.QueryRow(
			"SELECT COUNT(seq), AVG(rating) FROM user_reviews WHERE user_id = ?",
			summary.UserID,
		).Scan(&summary.ReviewCount, &avg)
		summary.UpdatedAt = time.Now().UTC()
	}
	if err != nil {
		return models.RatingSummary{}, err
	}
	if avg.Valid {
		summary.AverageRating = &avg.Float64
	}
	return summary, nil
}
