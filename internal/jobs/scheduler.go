package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/cache"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
)

type Scheduler struct {
	cron     *cron.Cron
	cache    *redis.Client
	sessions *repository.SessionRepository
	visits   *repository.VisitRepository
	log      zerolog.Logger
}

func NewScheduler(
	cacheClient *redis.Client,
	sessions *repository.SessionRepository,
	visits *repository.VisitRepository,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cache:    cacheClient,
		sessions: sessions,
		visits:   visits,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.purgeSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.refreshVisitStats); err != nil { // hourly refresh
		return err
	}

	s.cron.Start()

	// Warm the counters on boot so the dashboard never waits for the
	// first cron tick.
	go s.refreshVisitStats()
	return nil
}

// Stop waits for running jobs to finish, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
		return
	}
	s.log.Info().Int64("removed", removed).Msg("expired sessions purged")
}

func (s *Scheduler) refreshVisitStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	windows := map[string]time.Time{
		cache.KeyVisitsToday: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		cache.KeyVisitsWeek:  now.AddDate(0, 0, -7),
		cache.KeyVisitsMonth: now.AddDate(0, -1, 0),
		cache.KeyVisitsTotal: {},
	}

	for key, cutoff := range windows {
		count, err := s.visits.CountSince(ctx, cutoff)
		if err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("visit stat refresh failed")
			continue
		}
		if s.cache == nil {
			continue
		}
		if err := s.cache.Set(ctx, key, count, 2*time.Hour).Err(); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("visit stat cache write failed")
		}
	}
}
