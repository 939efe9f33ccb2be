package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/raterly/raterly-be/internal/models"
)

// ReviewServiceProvider defines the interface for the standalone review
// collection. These reviews belong to no user; the collection predates the
// embedded per-user history and is kept for the still-routed endpoints.
type ReviewServiceProvider interface {
	CreateReview(rating float64, review string) (models.StandaloneReview, error)
	GetAllReviews() ([]models.StandaloneReview, error)
}

// ReviewService provides access to the standalone review collection.
type ReviewService struct {
	db *sql.DB
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *sql.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview inserts a new standalone review.
func (s *ReviewService) CreateReview(rating float64, review string) (models.StandaloneReview, error) {
	rec := models.StandaloneReview{
		ID:        uuid.New().String(),
		Rating:    rating,
		Review:    review,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO reviews (id, rating, review, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Rating, rec.Review, rec.CreatedAt,
	)
	if err != nil {
		return models.StandaloneReview{}, err
	}
	return rec, nil
}

// GetAllReviews retrieves every standalone review in insertion order.
func (s *ReviewService) GetAllReviews() ([]models.StandaloneReview, error) {
	rows, err := s.db.Query("SELECT id, rating, review, created_at FROM reviews ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.StandaloneReview{}
	for rows.Next() {
		var rec models.StandaloneReview
		if err := rows.Scan(&rec.ID, &rec.Rating, &rec.Review, &rec.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rec)
	}
	return reviews, rows.Err()
}
