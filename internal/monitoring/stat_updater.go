package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	ws "github.com/raterly/raterly-be/internal/websocket"
)

// StatUpdater periodically recomputes the per-user rating summaries from the
// review histories and announces the refresh on the live feed. The schedule
// is a standard cron spec (descriptors like "@every 1m" included).
type StatUpdater struct {
	db       *sql.DB
	hub      *ws.Hub
	schedule cron.Schedule
	done     chan bool
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(db *sql.DB, hub *ws.Hub, scheduleSpec string) (*StatUpdater, error) {
	schedule, err := cron.ParseStandard(scheduleSpec)
	if err != nil {
		return nil, err
	}
	return &StatUpdater{
		db:       db,
		hub:      hub,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the periodic updates. It recomputes once immediately so fresh
// deployments have summaries before the first tick.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	su.recomputeSummaries()

	for {
		next := su.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-su.done:
			timer.Stop()
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-timer.C:
			su.recomputeSummaries()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// recomputeSummaries rebuilds every user's summary in one upsert. AVG skips
// the NULL placeholder ratings, COUNT does not, matching what callers see in
// the raw history.
func (su *StatUpdater) recomputeSummaries() {
	res, err := su.db.Exec(`
		INSERT INTO rating_summaries (user_id, review_count, average_rating, updated_at)
		SELECT u.id, COUNT(r.seq), AVG(r.rating), ?
		FROM users u
		LEFT JOIN user_reviews r ON r.user_id = u.id
		GROUP BY u.id
		ON CONFLICT(user_id) DO UPDATE SET
			review_count = excluded.review_count,
			average_rating = excluded.average_rating,
			updated_at = excluded.updated_at`,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to recompute rating summaries")
		return
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		su.hub.Notify("summaries.updated", map[string]interface{}{"users": n})
	}
}
