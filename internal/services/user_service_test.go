package services

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterly/raterly-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+uuid.New().String()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func register(t *testing.T, s *UserService, email, username string) string {
	t.Helper()
	user, err := s.Register(RegisterParams{
		Email:    email,
		Password: "hunter22",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Username: username,
	})
	require.NoError(t, err)
	return user.ID
}

func TestRegisterCreatesPlaceholderReview(t *testing.T) {
	s := NewUserService(newTestDB(t))

	created, err := s.Register(RegisterParams{
		Email:      "alice@example.com",
		Password:   "hunter22",
		Username:   "alice",
		RatingLink: "https://r.example/alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	user, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.Admin)
	assert.False(t, user.Active)
	require.Len(t, user.Reviews, 1)
	assert.Nil(t, user.Reviews[0].Rating)
	assert.Empty(t, user.Reviews[0].Review)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	_, err := s.Register(RegisterParams{
		Email:    "alice@example.com",
		Password: "hunter22",
		Username: "alice2",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	users, err := s.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	_, err := s.Register(RegisterParams{
		Email:    "other@example.com",
		Password: "hunter22",
		Username: "alice",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthenticate(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	user, err := s.Authenticate("alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = s.Authenticate("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAppendReviewKeepsOrder(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	five := 5.0
	half := 4.5
	require.NoError(t, s.AppendReview("alice", &five, "great"))
	require.NoError(t, s.AppendReview("alice", &half, "solid"))
	require.NoError(t, s.AppendReview("alice", nil, "no score"))

	user, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	require.Len(t, user.Reviews, 4)

	// Placeholder first, then submissions in append order.
	assert.Nil(t, user.Reviews[0].Rating)
	require.NotNil(t, user.Reviews[1].Rating)
	assert.Equal(t, 5.0, *user.Reviews[1].Rating)
	assert.Equal(t, "great", user.Reviews[1].Review)
	require.NotNil(t, user.Reviews[2].Rating)
	assert.Equal(t, 4.5, *user.Reviews[2].Rating)
	assert.Nil(t, user.Reviews[3].Rating)
	assert.Equal(t, "no score", user.Reviews[3].Review)
}

func TestAppendReviewUnknownUser(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	five := 5.0
	assert.ErrorIs(t, s.AppendReview("nobody", &five, "great"), ErrNotFound)

	user, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Len(t, user.Reviews, 1)
}

func TestUpdateUserAppliesOnlyPresentFields(t *testing.T) {
	s := NewUserService(newTestDB(t))
	id := register(t, s, "alice@example.com", "alice")

	admin := true
	user, err := s.UpdateUser(id, UserUpdate{Admin: &admin})
	require.NoError(t, err)
	assert.True(t, user.Admin)
	assert.False(t, user.Active)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
}

func TestUpdateUserEmptyStringLeavesFieldUnchanged(t *testing.T) {
	s := NewUserService(newTestDB(t))
	id := register(t, s, "alice@example.com", "alice")

	empty := ""
	user, err := s.UpdateUser(id, UserUpdate{Username: &empty})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestUpdateUserExplicitFalseClearsFlag(t *testing.T) {
	s := NewUserService(newTestDB(t))
	id := register(t, s, "alice@example.com", "alice")

	on := true
	_, err := s.UpdateUser(id, UserUpdate{Active: &on})
	require.NoError(t, err)

	off := false
	user, err := s.UpdateUser(id, UserUpdate{Active: &off})
	require.NoError(t, err)
	assert.False(t, user.Active)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	s := NewUserService(newTestDB(t))
	id := register(t, s, "alice@example.com", "alice")

	newPassword := "correct-horse"
	_, err := s.UpdateUser(id, UserUpdate{Password: &newPassword})
	require.NoError(t, err)

	_, err = s.Authenticate("alice@example.com", "correct-horse")
	assert.NoError(t, err)
	_, err = s.Authenticate("alice@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUserNotFound(t *testing.T) {
	s := NewUserService(newTestDB(t))

	admin := true
	_, err := s.UpdateUser("no-such-id", UserUpdate{Admin: &admin})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")
	id := register(t, s, "bob@example.com", "bob")

	taken := "alice@example.com"
	_, err := s.UpdateUser(id, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestGetRatingSummary(t *testing.T) {
	s := NewUserService(newTestDB(t))
	register(t, s, "alice@example.com", "alice")

	four := 4.0
	five := 5.0
	require.NoError(t, s.AppendReview("alice", &four, ""))
	require.NoError(t, s.AppendReview("alice", &five, ""))

	summary, err := s.GetRatingSummary("alice")
	require.NoError(t, err)
	// Placeholder counts toward the history length but not the average.
	assert.Equal(t, 3, summary.ReviewCount)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 4.5, *summary.AverageRating, 1e-9)

	_, err = s.GetRatingSummary("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
