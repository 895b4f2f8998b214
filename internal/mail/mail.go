// Package mail delivers activation and password-reset emails through the
// Postmark REST API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"serrano/api/internal/config"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	frontendURL string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(cfg config.MailConfig, opts ...Option) *Client {
	c := &Client{
		serverToken: cfg.ServerToken,
		fromEmail:   cfg.FromEmail,
		frontendURL: cfg.FrontendURL,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type message struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

// SendActivation mails the shop-activation link for a pending seller.
func (c *Client) SendActivation(ctx context.Context, toEmail, name, token string) error {
	link := fmt.Sprintf("%s/seller/activation/%s", c.frontendURL, token)
	body := fmt.Sprintf(
		"Hello %s, please click on the link to activate your shop: %s\n\nThis link expires in 5 minutes.",
		name, link,
	)
	return c.send(ctx, toEmail, "Activate your Shop", body)
}

// SendPasswordReset mails a reset link for any account kind.
func (c *Client) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", c.frontendURL, token)
	body := fmt.Sprintf(
		"Click the following link to reset your password: %s\n\nThis link expires in 5 minutes.",
		link,
	)
	return c.send(ctx, toEmail, "Password Reset", body)
}

// SendApprovalReminder nudges a seller whose shop is still awaiting review.
func (c *Client) SendApprovalReminder(ctx context.Context, toEmail, name string) error {
	body := fmt.Sprintf(
		"Hello %s, your shop is still awaiting review. We will email you as soon as it is approved.",
		name,
	)
	return c.send(ctx, toEmail, "Your shop is awaiting approval", body)
}

func (c *Client) send(ctx context.Context, to, subject, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("mail client not configured: missing server token")
	}

	payload := message{
		From:     c.fromEmail,
		To:       to,
		Subject:  subject,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
