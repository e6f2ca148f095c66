package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SweepLockKey is the Redis key guarding the periodic sweep across instances.
const SweepLockKey = "sweep:late-fines:lock"

// SweepScheduler runs the late fine sweep on a fixed interval.
type SweepScheduler struct {
	generator LateFineGenerator
	lock      *redis.Client
	interval  time.Duration
	lockTTL   time.Duration
	logger    zerolog.Logger
}

// NewSweepScheduler constructs a scheduler. A nil redis client runs every tick without locking.
func NewSweepScheduler(generator LateFineGenerator, lock *redis.Client, interval, lockTTL time.Duration, logger zerolog.Logger) *SweepScheduler {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &SweepScheduler{
		generator: generator,
		lock:      lock,
		interval:  interval,
		lockTTL:   lockTTL,
		logger:    logger.With().Str("component", "sweep_scheduler").Logger(),
	}
}

// Start launches the ticker loop and returns immediately. It is a no-op when the interval is not positive.
func (s *SweepScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("periodic late fine sweep disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, _, err := s.RunOnce(ctx); err != nil {
					s.logger.Error().Err(err).Msg("scheduled late fine sweep failed")
				}
			}
		}
	}()
}

// RunOnce sweeps if this instance wins the lock. The lock is left to expire so
// other instances skip the sweep for the rest of the lock window.
func (s *SweepScheduler) RunOnce(ctx context.Context) (SweepResult, bool, error) {
	if s.lock != nil {
		acquired, err := s.lock.SetNX(ctx, SweepLockKey, time.Now().UTC().Format(time.RFC3339), s.lockTTL).Result()
		if err != nil {
			return SweepResult{}, false, err
		}
		if !acquired {
			s.logger.Debug().Msg("late fine sweep lock held elsewhere")
			return SweepResult{}, false, nil
		}
	}

	result, err := s.generator.Generate(ctx, SweepTriggerSchedule)
	return result, true, err
}
