package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"serrano/api/internal/models"
)

const reminderBatchSize = 100

type PendingShopLister interface {
	ListByStatus(ctx context.Context, status models.ShopStatus, limit, offset int) ([]models.Shop, error)
}

type ReminderMailer interface {
	SendApprovalReminder(ctx context.Context, toEmail, name string) error
}

// ReminderWorker drains the reminder stream and mails every seller whose
// shop is still pending review. Send failures are logged per shop so one
// bad address cannot block the rest of the batch.
type ReminderWorker struct {
	queue  *redis.Client
	shops  PendingShopLister
	mailer ReminderMailer
	log    zerolog.Logger
}

func NewReminderWorker(queue *redis.Client, shops PendingShopLister, mailer ReminderMailer, log zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		queue:  queue,
		shops:  shops,
		mailer: mailer,
		log:    log,
	}
}

// Run blocks until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	lastID := "$"
	for {
		streams, err := w.queue.XRead(ctx, &redis.XReadArgs{
			Streams: []string{reminderStream, lastID},
			Count:   8,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				w.log.Warn().Err(err).Msg("read reminder stream failed")
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

func (w *ReminderWorker) handle(ctx context.Context, msg redis.XMessage) {
	taskType, _ := msg.Values["type"].(string)
	if taskType != "pending-shops" {
		w.log.Debug().Str("type", taskType).Msg("unknown reminder task")
		return
	}

	sent := 0
	for offset := 0; ; offset += reminderBatchSize {
		shops, err := w.shops.ListByStatus(ctx, models.ShopStatusPending, reminderBatchSize, offset)
		if err != nil {
			w.log.Warn().Err(err).Msg("list pending shops failed")
			return
		}
		if len(shops) == 0 {
			break
		}
		for _, shop := range shops {
			if err := w.mailer.SendApprovalReminder(ctx, shop.Email, shop.Name); err != nil {
				w.log.Warn().Err(err).Str("shop_id", shop.ID).Msg("send approval reminder failed")
				continue
			}
			sent++
		}
		if len(shops) < reminderBatchSize {
			break
		}
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("approval reminders sent")
	}
}
