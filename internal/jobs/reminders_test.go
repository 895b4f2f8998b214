package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"serrano/api/internal/models"
)

type fakeShopLister struct {
	pending []models.Shop
}

func (f *fakeShopLister) ListByStatus(_ context.Context, status models.ShopStatus, limit, offset int) ([]models.Shop, error) {
	if status != models.ShopStatusPending {
		return nil, nil
	}
	if offset >= len(f.pending) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.pending) {
		end = len(f.pending)
	}
	return f.pending[offset:end], nil
}

type fakeReminderMailer struct {
	sent    []string
	failFor string
}

func (f *fakeReminderMailer) SendApprovalReminder(_ context.Context, toEmail, _ string) error {
	if toEmail == f.failFor {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, toEmail)
	return nil
}

func reminderMessage() redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": "pending-shops"}}
}

func TestReminderWorkerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("mails every pending shop", func(t *testing.T) {
		lister := &fakeShopLister{pending: []models.Shop{
			{ID: "s1", Name: "Chai Point", Email: "one@chai.example", Status: models.ShopStatusPending},
			{ID: "s2", Name: "Dosa Corner", Email: "two@dosa.example", Status: models.ShopStatusPending},
		}}
		mailer := &fakeReminderMailer{}
		w := NewReminderWorker(nil, lister, mailer, zerolog.Nop())

		w.handle(ctx, reminderMessage())
		assert.Equal(t, []string{"one@chai.example", "two@dosa.example"}, mailer.sent)
	})

	t.Run("one bad address does not block the batch", func(t *testing.T) {
		lister := &fakeShopLister{pending: []models.Shop{
			{ID: "s1", Email: "dead@chai.example", Status: models.ShopStatusPending},
			{ID: "s2", Email: "live@dosa.example", Status: models.ShopStatusPending},
		}}
		mailer := &fakeReminderMailer{failFor: "dead@chai.example"}
		w := NewReminderWorker(nil, lister, mailer, zerolog.Nop())

		w.handle(ctx, reminderMessage())
		assert.Equal(t, []string{"live@dosa.example"}, mailer.sent)
	})

	t.Run("pages through a large backlog", func(t *testing.T) {
		lister := &fakeShopLister{}
		for i := 0; i < reminderBatchSize+5; i++ {
			lister.pending = append(lister.pending, models.Shop{
				ID:     fmt.Sprintf("s%d", i),
				Email:  fmt.Sprintf("shop%d@serrano.example", i),
				Status: models.ShopStatusPending,
			})
		}
		mailer := &fakeReminderMailer{}
		w := NewReminderWorker(nil, lister, mailer, zerolog.Nop())

		w.handle(ctx, reminderMessage())
		assert.Len(t, mailer.sent, reminderBatchSize+5)
	})

	t.Run("unknown task types are skipped", func(t *testing.T) {
		lister := &fakeShopLister{pending: []models.Shop{{ID: "s1", Email: "one@chai.example"}}}
		mailer := &fakeReminderMailer{}
		w := NewReminderWorker(nil, lister, mailer, zerolog.Nop())

		w.handle(ctx, redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": "sweep"}})
		assert.Empty(t, mailer.sent)
	})
}
