package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/db"
)

const noShowJobTimeout = 2 * time.Minute

// RegisterNoShowJob schedules the sweep that flags stale pending
// appointments as no-shows once their start time plus the grace period has
// passed. Cancelled rows are untouched; both terminal statuses free the slot.
func RegisterNoShowJob(s *Service, database *db.DB, clock booking.Clock, cronExpr string, grace time.Duration) error {
	if database == nil {
		return fmt.Errorf("no-show job requires database")
	}
	if clock == nil {
		clock = booking.NewRealClock()
	}

	jobName := "no_show_sweep"
	jobLogger := log.With().
		Str("component", "no_show_sweep_job").
		Str("job_name", jobName).
		Logger()

	_, err := s.AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), noShowJobTimeout)
		defer cancel()

		cutoff := clock.Now().Add(-grace)
		flagged, err := database.Queries.MarkPendingNoShows(ctx, cutoff)
		if err != nil {
			jobLogger.Error().Err(err).Msg("No-show sweep failed")
			return
		}
		if flagged > 0 {
			jobLogger.Info().Int64("flagged", flagged).Time("cutoff", cutoff).Msg("Flagged no-show appointments")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add no-show sweep job: %w", err)
	}
	return nil
}
