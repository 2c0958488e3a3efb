package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/boardroom/internal/application"
)

var isolatedEnv = []string{
	"BOARDROOM_CONFIG",
	"BOARDROOM_PERSONAS_PATH",
	"BOARDROOM_GENERATION_PROVIDER",
	"BOARDROOM_OPENAI_API_KEY",
	"BOARDROOM_OPENAI_BASE_URL",
	"BOARDROOM_GEMINI_API_KEY",
	"BOARDROOM_SLACK_WEBHOOK_URL",
	"BOARDROOM_NOTION_API_KEY",
	"BOARDROOM_GOOGLE_API_KEY",
	"BOARDROOM_TWILIO_ACCOUNT_SID",
	"BOARDROOM_TWILIO_AUTH_TOKEN",
	"BOARDROOM_AMQP_URL",
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"SLACK_WEBHOOK_URL",
	"NOTION_API_KEY",
	"GOOGLE_API_KEY",
	"TWILIO_ACCOUNT_SID",
	"TWILIO_AUTH_TOKEN",
}

func TestVersionPrintsVersion(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestPersonasListsBuiltinCatalogue(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "", "personas")
	require.NoError(t, err)
	assert.Contains(t, stdout, "personas: 18")
	assert.Contains(t, stdout, "Real Estate")
	assert.Contains(t, stdout, "(garrett)")
}

func TestPersonasJSONFilteredByDepartment(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "", "personas", "--json", "--department", "finance")
	require.NoError(t, err)

	var listed []personaJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, "xander", listed[0].ID)
	for _, persona := range listed {
		assert.Equal(t, "Finance", persona.Department)
	}
}

func TestPersonasExportThenLoadFromPath(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "personas.yaml")

	stdout, _, err := executeCLI(t, "", "personas", "export", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 18 personas")

	t.Setenv("BOARDROOM_PERSONAS_PATH", path)
	stdout, _, err = executeCLI(t, "", "personas", "--json")
	require.NoError(t, err)

	var listed []personaJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	assert.Len(t, listed, 18)
}

func TestAskRequiresPersonaSelection(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "", "ask", "How do we grow?")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoPersonasSelected)
}

func TestAskRejectsBlankMessage(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "", "ask", "--persona", "steve", "--json", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is required")
}

func TestAskJSONWithFakeOpenAI(t *testing.T) {
	isolateEnv(t)
	server, requests := fakeOpenAI(t, "Focus on the product.")
	t.Setenv("BOARDROOM_OPENAI_BASE_URL", server.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	stdout, _, err := executeCLI(t, "", "ask", "--persona", "steve,melon", "--persona", "nobody", "--json", "Should we ship?")
	require.NoError(t, err)

	var result orchestrationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 2, result.AnsweredCount)
	assert.Equal(t, map[string]string{
		"steve": "Focus on the product.",
		"melon": "Focus on the product.",
	}, result.Responses)
	assert.NotEmpty(t, result.Timestamp)
	assert.Equal(t, 2, requests())
}

func TestAskWithoutAPIKeyFallsBack(t *testing.T) {
	isolateEnv(t)
	stdout, stderr, err := executeCLI(t, "", "ask", "--persona", "steve", "--json", "Should we ship?")
	require.NoError(t, err)

	var result orchestrationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 0, result.AnsweredCount)
	assert.Equal(t, application.FallbackResponse, result.Responses["steve"])
	assert.Contains(t, stderr, "generation provider not configured")
}

func TestAskRendersResponses(t *testing.T) {
	isolateEnv(t)
	server, _ := fakeOpenAI(t, "Build the rocket.")
	t.Setenv("BOARDROOM_OPENAI_BASE_URL", server.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	stdout, _, err := executeCLI(t, "", "ask", "--persona", "melon", "Mars?")
	require.NoError(t, err)
	assert.Contains(t, stdout, "answered: 1 of 1")
	assert.Contains(t, stdout, "Build the rocket.")
}

func TestChatKeepsHistoryAndAnalyticsAcrossTurns(t *testing.T) {
	isolateEnv(t)
	server, requests := fakeOpenAI(t, "Noted.")
	t.Setenv("BOARDROOM_OPENAI_BASE_URL", server.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	input := strings.Join([]string{
		"First question",
		"Second question",
		"/history 1",
		"/analytics",
		"/unknown",
		"/quit",
		"Never asked",
	}, "\n") + "\n"

	stdout, _, err := executeCLI(t, input, "chat", "--persona", "steve")
	require.NoError(t, err)
	assert.Equal(t, 2, requests())
	assert.Contains(t, stdout, "turns: 1")
	assert.Contains(t, stdout, "Second question")
	assert.Contains(t, stdout, "conversations: 2")
	assert.Contains(t, stdout, "most used: Steve")
	assert.Contains(t, stdout, "unknown command /unknown")
	assert.NotContains(t, stdout, "Never asked")
}

func TestHealthJSONReportsServices(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	stdout, _, err := executeCLI(t, "", "health", "--json")
	require.NoError(t, err)

	var status healthJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 18, status.PersonasLoaded)
	assert.Equal(t, int64(0), status.TotalConversations)
	assert.True(t, status.Services["openai"])
	assert.False(t, status.Services["slack"])
	assert.Contains(t, status.Services, "amqp")
}

func TestProbeUnknownServiceFails(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "", "probe", "fax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown service "fax"`)
}

func TestProbeUnconfiguredServiceIsAResult(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeCLI(t, "", "probe", "notion", "--json")
	require.NoError(t, err)

	var results []probeJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "notion not configured", results[0].Error)
}

func TestSlackSendWithoutWebhookFails(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "", "slack", "send", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSlackSendPostsToWebhook(t *testing.T) {
	isolateEnv(t)
	var (
		mu      sync.Mutex
		payload map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	t.Setenv("SLACK_WEBHOOK_URL", server.URL)

	stdout, _, err := executeCLI(t, "", "slack", "send", "--channel", "#board", "Quarterly", "review")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Message sent to Slack")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Quarterly review", payload["text"])
	assert.Equal(t, "#board", payload["channel"])
}

func TestUnknownCommand(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeCLI(t, "", "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

// isolateEnv clears integration settings inherited from the host.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range isolatedEnv {
		t.Setenv(key, "")
	}
}

func executeCLI(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIInHome(t, t.TempDir(), input, args...)
}

func executeCLIInHome(t *testing.T, home, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeOpenAI(t *testing.T, answer string) (*httptest.Server, func() int) {
	t.Helper()

	var (
		mu    sync.Mutex
		count int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		mu.Lock()
		count++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": answer}},
			},
		})
	}))
	t.Cleanup(server.Close)

	return server, func() int {
		mu.Lock()
		defer mu.Unlock()
		return count
	}
}

func TestHealthResolvesSecretReferences(t *testing.T) {
	isolateEnv(t)
	home := t.TempDir()
	secretDir := filepath.Join(home, ".boardroom", "secrets", "boardroom")
	require.NoError(t, os.MkdirAll(secretDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(secretDir, "notion"), []byte("secret_abc\n"), 0o600))
	t.Setenv("NOTION_API_KEY", "secret:boardroom/notion")
	t.Setenv("PATH", t.TempDir())

	stdout, _, err := executeCLIInHome(t, home, "", "health", "--json")
	require.NoError(t, err)

	var status healthJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.True(t, status.Services["notion"])
}

func TestMissingSecretReferenceFails(t *testing.T) {
	isolateEnv(t)
	t.Setenv("NOTION_API_KEY", "secret:boardroom/missing")
	t.Setenv("PATH", t.TempDir())

	_, _, err := executeCLI(t, "", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve notion.api_key")
}
