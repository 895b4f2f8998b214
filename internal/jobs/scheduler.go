package jobs

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// cleanupStream carries object removal tasks produced when avatars are
// replaced, plus the nightly sweep marker.
const cleanupStream = "uploads:cleanup"

// reminderStream carries periodic nudges about shops stuck in pending.
const reminderStream = "shops:reminders"

type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 30 2 * * *", s.enqueueSweep); err != nil { // nightly
		return err
	}
	if _, err := s.cron.AddFunc("0 0 9 * * *", s.enqueuePendingReminder); err != nil { // daily, 09:00
		return err
	}

	s.cron.Start()
	return nil
}

// Stop blocks until in-flight jobs have finished.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// enqueueSweep asks the cleanup worker to re-scan for orphaned objects,
// catching removals that were dropped while the worker was down.
func (s *Scheduler) enqueueSweep() {
	if err := s.enqueue(cleanupStream, map[string]any{
		"type": "sweep",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
	}
}

func (s *Scheduler) enqueuePendingReminder() {
	if err := s.enqueue(reminderStream, map[string]any{
		"type": "pending-shops",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue pending reminder failed")
	}
}

func (s *Scheduler) enqueue(stream string, payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: stream,
		Values: payload,
	}).Result()
	return err
}
