package mail_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serrano/api/internal/config"
	"serrano/api/internal/mail"
)

func mailConfig() config.MailConfig {
	return config.MailConfig{
		ServerToken: "test-token",
		FromEmail:   "noreply@serrano.example",
		FrontendURL: "https://shop.serrano.example",
	}
}

type captured struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

func newCaptureServer(t *testing.T, got *captured, gotHeader *http.Header) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSendActivation(t *testing.T) {
	var got captured
	var header http.Header
	srv := newCaptureServer(t, &got, &header)
	defer srv.Close()

	client := mail.NewClient(mailConfig(), mail.WithAPIURL(srv.URL), mail.WithHTTPClient(srv.Client()))

	err := client.SendActivation(context.Background(), "owner@chai.example", "Chai Point", "tok123")
	require.NoError(t, err)

	assert.Equal(t, "test-token", header.Get("X-Postmark-Server-Token"))
	assert.Equal(t, "noreply@serrano.example", got.From)
	assert.Equal(t, "owner@chai.example", got.To)
	assert.Equal(t, "Activate your Shop", got.Subject)
	assert.Contains(t, got.TextBody, "https://shop.serrano.example/seller/activation/tok123")
	assert.Contains(t, got.TextBody, "Chai Point")
}

func TestSendPasswordReset(t *testing.T) {
	var got captured
	var header http.Header
	srv := newCaptureServer(t, &got, &header)
	defer srv.Close()

	client := mail.NewClient(mailConfig(), mail.WithAPIURL(srv.URL), mail.WithHTTPClient(srv.Client()))

	err := client.SendPasswordReset(context.Background(), "owner@chai.example", "tok456")
	require.NoError(t, err)

	assert.Equal(t, "Password Reset", got.Subject)
	assert.Contains(t, got.TextBody, "https://shop.serrano.example/reset-password/tok456")
}

func TestSendErrors(t *testing.T) {
	t.Run("unconfigured client refuses to send", func(t *testing.T) {
		client := mail.NewClient(config.MailConfig{})
		assert.False(t, client.Configured())
		err := client.SendPasswordReset(context.Background(), "owner@chai.example", "tok")
		assert.Error(t, err)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		client := mail.NewClient(mailConfig(), mail.WithAPIURL(srv.URL))
		err := client.SendActivation(context.Background(), "owner@chai.example", "Chai Point", "tok")
		assert.ErrorContains(t, err, "status 422")
	})
}
