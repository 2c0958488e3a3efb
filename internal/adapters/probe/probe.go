package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/boardroom/internal/adapters/httpapi"
	"github.com/bnema/boardroom/internal/ports"
)

const (
	DefaultNotionBaseURL = "https://api.notion.com"
	DefaultTwilioBaseURL = "https://api.twilio.com"

	notionVersion = "2022-06-28"
)

var (
	_ ports.Prober = (*Notion)(nil)
	_ ports.Prober = (*Twilio)(nil)
	_ ports.Prober = (*Google)(nil)
)

// Notion checks the integration token against /v1/users/me.
type Notion struct {
	APIKey  string
	BaseURL string
	Client  httpapi.Client
}

func (n *Notion) Name() string     { return "notion" }
func (n *Notion) Configured() bool { return strings.TrimSpace(n.APIKey) != "" }

func (n *Notion) Probe(ctx context.Context) (string, error) {
	baseURL := n.BaseURL
	if baseURL == "" {
		baseURL = DefaultNotionBaseURL
	}

	err := get(ctx, n.Client, baseURL, "/v1/users/me", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+n.APIKey)
		req.Header.Set("Notion-Version", notionVersion)
		req.Header.Set("Content-Type", "application/json")
	})
	if err != nil {
		return "", fmt.Errorf("notion API error: %w", err)
	}

	return "Notion connection successful", nil
}

// Twilio fetches the account resource with basic auth.
type Twilio struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	Client     httpapi.Client
}

func (t *Twilio) Name() string { return "twilio" }

func (t *Twilio) Configured() bool {
	return strings.TrimSpace(t.AccountSID) != "" && strings.TrimSpace(t.AuthToken) != ""
}

type twilioAccount struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (t *Twilio) Probe(ctx context.Context) (string, error) {
	baseURL := t.BaseURL
	if baseURL == "" {
		baseURL = DefaultTwilioBaseURL
	}

	var account twilioAccount
	err := getJSON(ctx, t.Client, baseURL, "/2010-04-01/Accounts/"+t.AccountSID+".json", func(req *http.Request) {
		req.SetBasicAuth(t.AccountSID, t.AuthToken)
	}, &account)
	if err != nil {
		return "", fmt.Errorf("twilio API error: %w", err)
	}

	sid := account.SID
	if sid == "" {
		sid = t.AccountSID
	}
	return "Twilio connected: " + sid, nil
}

// Google only reports whether an API key is present.
type Google struct {
	APIKey string
}

func (g *Google) Name() string     { return "google" }
func (g *Google) Configured() bool { return strings.TrimSpace(g.APIKey) != "" }

func (g *Google) Probe(context.Context) (string, error) {
	return "Google API key configured", nil
}

func get(ctx context.Context, client httpapi.Client, baseURL, path string, decorate func(*http.Request)) error {
	return getJSON(ctx, client, baseURL, path, decorate, nil)
}

func getJSON(ctx context.Context, client httpapi.Client, baseURL, path string, decorate func(*http.Request), out any) error {
	endpoint, err := httpapi.BuildURL(baseURL, path)
	if err != nil {
		return err
	}

	requestCtx, cancel := client.RequestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	decorate(req)

	resp, err := client.HTTP().Do(req)
	if err != nil {
		return fmt.Errorf("send probe request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.New(httpapi.DescribeError(resp))
	}
	if out == nil {
		return nil
	}
	if err := httpapi.DecodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("decode probe response: %w", err)
	}

	return nil
}
