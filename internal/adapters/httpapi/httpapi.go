package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	MaxResponseBytes      = 1 << 20
	DefaultRequestTimeout = 30 * time.Second
)

// Client bundles the HTTP client and per-request timeout shared by the
// outbound adapters.
type Client struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

func (c Client) HTTP() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// RequestContext applies RequestTimeout unless ctx already carries a deadline.
func (c Client) RequestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func BuildURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}

func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// DecodeJSON reads at most MaxResponseBytes of body into out.
func DecodeJSON(body io.Reader, out any) error {
	return json.NewDecoder(io.LimitReader(body, MaxResponseBytes)).Decode(out)
}

type apiErrorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type apiErrorObject struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// DescribeError summarises a non-2xx response. It understands the
// {"error":{"message":...}}, {"error":"..."} and {"message":...} shapes and
// falls back to the status code.
func DescribeError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	var payload apiErrorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	var object apiErrorObject
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &object) == nil && object.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, object.Message)
	}
	var text string
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &text) == nil && text != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, text)
	}
	if payload.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Message)
	}

	return fmt.Sprintf("status %d", resp.StatusCode)
}
