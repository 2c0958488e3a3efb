package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/boardroom/internal/adapters/httpapi"
	"github.com/bnema/boardroom/internal/domain"
)

var steve = domain.Persona{
	ID:          "steve",
	Name:        "Steve",
	Title:       "Chief Technology Officer (CTO)",
	Department:  "Executive",
	Personality: "Technology strategist.",
	Expertise:   []string{"Technology Strategy", "Innovation"},
}

func newTestGenerator(t *testing.T, server *httptest.Server, timeout time.Duration) *Generator {
	t.Helper()

	generator, err := NewGenerator(Options{
		BaseURL: server.URL + "/v1",
		APIKey:  "sk-test",
		Client:  httpapi.Client{HTTPClient: server.Client(), RequestTimeout: timeout},
	})
	require.NoError(t, err)
	return generator
}

func TestGenerateSendsPersonaPromptAndParsesChoice(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.Equal(t, DefaultMaxTokens, body.MaxTokens)
		assert.Equal(t, 0.0, body.Temperature)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Contains(t, body.Messages[0].Content, "You are Steve, Chief Technology Officer (CTO)")
		assert.Contains(t, body.Messages[0].Content, "Conversation context: User: earlier")
		assert.Equal(t, chatMessage{Role: "user", Content: "Build or buy?"}, body.Messages[1])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Build it.  "}}]}`))
	}))
	t.Cleanup(server.Close)

	text, err := newTestGenerator(t, server, time.Second).Generate(context.Background(), steve, "Build or buy?", "User: earlier")

	require.NoError(t, err)
	assert.Equal(t, "Build it.", text)
}

func TestGenerateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"Incorrect API key"}}`, wantErr: "status 401: Incorrect API key"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrEmptyCompletion.Error()},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, wantErr: ErrEmptyCompletion.Error()},
		{name: "malformed", status: http.StatusOK, body: `{"choices":`, wantErr: "decode completion response"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			_, err := newTestGenerator(t, server, time.Second).Generate(context.Background(), steve, "hi", "")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestGenerateHonoursRequestTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	t.Cleanup(server.Close)

	_, err := newTestGenerator(t, server, 20*time.Millisecond).Generate(context.Background(), steve, "hi", "")

	assert.ErrorContains(t, err, "request completion")
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(Options{})

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
