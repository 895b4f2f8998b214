package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog"

	"serrano/api/internal/apperr"
	"serrano/api/internal/config"
	"serrano/api/internal/ids"
	"serrano/api/internal/models"
)

// PaymentRecorder persists verified gateway payments.
type PaymentRecorder interface {
	Create(ctx context.Context, payment models.Payment) error
}

// PaymentService creates gateway checkout orders and verifies the callback
// signature the gateway attaches after a successful payment.
type PaymentService struct {
	client   *razorpay.Client
	payments PaymentRecorder
	cfg      config.PaymentConfig
	log      zerolog.Logger
}

func NewPaymentService(payments PaymentRecorder, cfg config.PaymentConfig, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		client:   razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		payments: payments,
		cfg:      cfg,
		log:      log,
	}
}

// Key returns the publishable gateway key the frontend embeds in its
// checkout widget.
func (s *PaymentService) Key() string {
	return s.cfg.KeyID
}

// Checkout creates a gateway order for the given amount. The amount is in
// currency units; the gateway wants the smallest denomination.
func (s *PaymentService) Checkout(ctx context.Context, amount int64) (map[string]any, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.KindValidation, "amount must be positive")
	}

	data := map[string]any{
		"amount":   amount * 100,
		"currency": s.cfg.Currency,
	}
	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create gateway order", err)
	}
	return order, nil
}

// VerifyPayment checks the gateway callback signature and records the
// payment when it is genuine.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return apperr.New(apperr.KindValidation, "missing payment fields")
	}

	expected := computePaymentSignature(s.cfg.KeySecret, orderID, paymentID)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return apperr.New(apperr.KindValidation, "payment signature mismatch")
	}

	payment := models.Payment{
		ID:               ids.New(),
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return apperr.Wrap(apperr.KindInternal, "record payment", err)
	}

	s.log.Info().Str("order_id", orderID).Str("payment_id", paymentID).Msg("payment verified")
	return nil
}

func computePaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}
