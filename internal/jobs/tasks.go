package jobs

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sweeper drops stale entries from an in-memory set and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// SweepTask wraps a Sweeper as a Task that logs what it removed.
func SweepTask(name string, sweeper Sweeper) Task {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if removed := sweeper.Sweep(); removed > 0 {
			log.Info().Str("task", name).Int("removed", removed).Msg("Swept stale entries")
		}
		return nil
	}
}
