package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/boardroom/internal/adapters/httpapi"
	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

const (
	DefaultChannel = "#executive-insights"

	discussionTitle = "Executive Boardroom Discussion"
	footer          = "Virtual C-Suite Boardroom"
	testMessage     = "Virtual C-Suite Boardroom - Connection Test Successful!"
	sentMessage     = "Message sent to Slack"
)

type Options struct {
	WebhookURL string
	Channel    string
	Client     httpapi.Client
}

// Client posts to a Slack incoming webhook. It is a Notifier for discussion
// summaries and a Prober for the slack integration.
type Client struct {
	opts Options
}

var (
	_ ports.Notifier = (*Client)(nil)
	_ ports.Prober   = (*Client)(nil)
)

func New(opts Options) *Client {
	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}
	return &Client{opts: opts}
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type attachment struct {
	Color  string  `json:"color"`
	Fields []field `json:"fields"`
	Footer string  `json:"footer"`
	TS     int64   `json:"ts"`
}

type webhookPayload struct {
	Text        string       `json:"text"`
	Channel     string       `json:"channel,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

func (c *Client) Notify(ctx context.Context, notification domain.Notification) error {
	return c.post(ctx, webhookPayload{
		Text: discussionTitle,
		Attachments: []attachment{{
			Color: "good",
			Fields: []field{
				{Title: "Executives Consulted", Value: strings.Join(notification.PersonaNames, ", "), Short: true},
				{Title: "Discussion Topic", Value: notification.Topic, Short: false},
			},
			Footer: footer,
			TS:     notification.SentAt.Unix(),
		}},
	})
}

// Send posts a plain message; an empty channel uses the configured default.
func (c *Client) Send(ctx context.Context, text string, channel string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyMessage
	}
	if channel == "" {
		channel = c.opts.Channel
	}

	return c.post(ctx, webhookPayload{Text: text, Channel: channel})
}

func (c *Client) Name() string {
	return "slack"
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.opts.WebhookURL) != ""
}

func (c *Client) Probe(ctx context.Context) (string, error) {
	if err := c.Send(ctx, testMessage, ""); err != nil {
		return "", err
	}
	return sentMessage, nil
}

func (c *Client) post(ctx context.Context, payload webhookPayload) error {
	if !c.Configured() {
		return fmt.Errorf("slack webhook: %w", domain.ErrNotConfigured)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	requestCtx, cancel := c.opts.Client.RequestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.Client.HTTP().Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post slack webhook: %s", httpapi.DescribeError(resp))
	}

	return nil
}
