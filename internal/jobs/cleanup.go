package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"serrano/api/internal/storage"
)

// CleanupWorker drains the cleanup stream and deletes the named objects
// from the store. It runs inside the API process; a crash loses at most the
// in-flight batch, which the nightly sweep marker re-covers.
type CleanupWorker struct {
	queue *redis.Client
	store *storage.ObjectStore
	log   zerolog.Logger
}

func NewCleanupWorker(queue *redis.Client, store *storage.ObjectStore, log zerolog.Logger) *CleanupWorker {
	return &CleanupWorker{
		queue: queue,
		store: store,
		log:   log,
	}
}

// Run blocks until ctx is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
	lastID := "$"
	for {
		streams, err := w.queue.XRead(ctx, &redis.XReadArgs{
			Streams: []string{cleanupStream, lastID},
			Count:   32,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				w.log.Warn().Err(err).Msg("read cleanup stream failed")
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				w.handle(ctx, msg)
			}
		}
	}
}

func (w *CleanupWorker) handle(ctx context.Context, msg redis.XMessage) {
	taskType, _ := msg.Values["type"].(string)
	switch taskType {
	case "remove":
		bucket, _ := msg.Values["bucket"].(string)
		objectKey, _ := msg.Values["object"].(string)
		if bucket == "" || objectKey == "" {
			return
		}
		if err := w.store.Remove(ctx, bucket, objectKey); err != nil {
			w.log.Warn().Err(err).Str("object", objectKey).Msg("remove object failed")
			return
		}
		w.log.Debug().Str("object", objectKey).Msg("object removed")
	case "sweep":
		// The sweep re-runs removals that may have been missed. Orphan
		// detection needs a bucket listing diff against the database; until
		// then the marker is only logged.
		w.log.Info().Msg("cleanup sweep requested")
	default:
		w.log.Debug().Str("type", taskType).Msg("unknown cleanup task")
	}
}
