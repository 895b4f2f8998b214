package service_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serrano/api/internal/apperr"
	"serrano/api/internal/config"
	"serrano/api/internal/models"
	"serrano/api/internal/service"
)

type recordedPayments struct {
	payments []models.Payment
}

func (r *recordedPayments) Create(_ context.Context, payment models.Payment) error {
	r.payments = append(r.payments, payment)
	return nil
}

func paymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		Currency:  "INR",
	}
}

func gatewaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("genuine signature is recorded", func(t *testing.T) {
		recorder := &recordedPayments{}
		svc := service.NewPaymentService(recorder, paymentConfig(), nopLogger())

		sig := gatewaySignature("rzp_test_secret", "order_1", "pay_1")
		require.NoError(t, svc.VerifyPayment(ctx, "order_1", "pay_1", sig))

		require.Len(t, recorder.payments, 1)
		assert.Equal(t, "order_1", recorder.payments[0].GatewayOrderID)
		assert.Equal(t, "pay_1", recorder.payments[0].GatewayPaymentID)
		assert.NotEmpty(t, recorder.payments[0].ID)
	})

	t.Run("forged signature is refused and not recorded", func(t *testing.T) {
		recorder := &recordedPayments{}
		svc := service.NewPaymentService(recorder, paymentConfig(), nopLogger())

		sig := gatewaySignature("some-other-secret", "order_1", "pay_1")
		err := svc.VerifyPayment(ctx, "order_1", "pay_1", sig)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Empty(t, recorder.payments)
	})

	t.Run("signature is bound to the order and payment ids", func(t *testing.T) {
		recorder := &recordedPayments{}
		svc := service.NewPaymentService(recorder, paymentConfig(), nopLogger())

		sig := gatewaySignature("rzp_test_secret", "order_1", "pay_1")
		err := svc.VerifyPayment(ctx, "order_2", "pay_1", sig)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc := service.NewPaymentService(&recordedPayments{}, paymentConfig(), nopLogger())
		err := svc.VerifyPayment(ctx, "", "pay_1", "sig")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCheckout(t *testing.T) {
	t.Run("non-positive amount rejected", func(t *testing.T) {
		svc := service.NewPaymentService(&recordedPayments{}, paymentConfig(), nopLogger())
		_, err := svc.Checkout(context.Background(), 0)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestPaymentKey(t *testing.T) {
	svc := service.NewPaymentService(&recordedPayments{}, paymentConfig(), nopLogger())
	assert.Equal(t, "rzp_test_key", svc.Key())
}
