package monitoring

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterly/raterly-be/internal/database"
	"github.com/raterly/raterly-be/internal/services"
	ws "github.com/raterly/raterly-be/internal/websocket"
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

func TestRecomputeSummaries(t *testing.T) {
	db := newTestDB(t)
	users := services.NewUserService(db)

	_, err := users.Register(services.RegisterParams{
		Email:    "alice@example.com",
		Password: "hunter22",
		Username: "alice",
	})
	require.NoError(t, err)

	three := 3.0
	five := 5.0
	require.NoError(t, users.AppendReview("alice", &three, ""))
	require.NoError(t, users.AppendReview("alice", &five, ""))

	hub := ws.NewHub()
	go hub.Run()

	su, err := NewStatUpdater(db, hub, "@every 1m")
	require.NoError(t, err)
	su.recomputeSummaries()

	var count int
	var avg sql.NullFloat64
	err = db.QueryRow(
		"SELECT review_count, average_rating FROM rating_summaries WHERE user_id = (SELECT id FROM users WHERE username = 'alice')",
	).Scan(&count, &avg)
	require.NoError(t, err)

	// Placeholder entry counts toward length, AVG skips its NULL rating.
	assert.Equal(t, 3, count)
	require.True(t, avg.Valid)
	assert.InDelta(t, 4.0, avg.Float64, 1e-9)
}

func TestNewStatUpdaterRejectsBadSchedule(t *testing.T) {
	hub := ws.NewHub()
	_, err := NewStatUpdater(newTestDB(t), hub, "not a schedule")
	assert.Error(t, err)
}
