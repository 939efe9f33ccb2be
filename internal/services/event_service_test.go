package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAndRecent(t *testing.T) {
	s := NewEventService(newTestDB(t))

	userID := "user-1"
	require.NoError(t, s.CreateEvent("user.registered", "info", "User alice registered", &userID))
	require.NoError(t, s.CreateEvent("review.submitted", "info", "Review submitted for alice", nil))

	events, err := s.GetRecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	types := []string{events[0].Type, events[1].Type}
	assert.Contains(t, types, "user.registered")
	assert.Contains(t, types, "review.submitted")
}

func TestGetRecentEventsHonorsLimit(t *testing.T) {
	s := NewEventService(newTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateEvent("review.submitted", "info", "Review submitted", nil))
	}

	events, err := s.GetRecentEvents(3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
