package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// orphanAge is how long an uploaded image may stay unattached to a post
// before it is reaped.
const orphanAge = 24 * time.Hour

// ImageSweeper periodically deletes image records that were uploaded but
// never attached to a post.
type ImageSweeper struct {
	db       *sql.DB
	schedule cron.Schedule
	done     chan bool
}

// NewImageSweeper creates a sweeper driven by a standard cron expression.
func NewImageSweeper(db *sql.DB, spec string) (*ImageSweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return &ImageSweeper{
		db:       db,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run executes the sweeping loop until Stop is called.
func (s *ImageSweeper) Run() {
	log.Info().Msg("Starting image sweeper...")
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping image sweeper.")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeping loop.
func (s *ImageSweeper) Stop() {
	s.done <- true
}

// sweep deletes unattached image records older than orphanAge.
func (s *ImageSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM images WHERE post_id IS NULL AND created_at < $1",
		time.Now().Add(-orphanAge))
	if err != nil {
		log.Error().Err(err).Msg("Image sweep failed")
		return
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Info().Int64("reaped", n).Msg("Removed unattached images")
	}
}
