package board

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogue = []domain.Persona{
	{ID: "garrett", Name: "Garrett", Title: "Chief Executive Officer (CEO)", Department: "Executive Leadership", Expertise: []string{"Strategy"}},
	{ID: "melon", Name: "Melon", Title: "Chief Technology Officer (CTO)", Department: "Technology"},
	{ID: "steve", Name: "Steve", Title: "Chief Product Officer (CPO)", Department: "Executive Leadership"},
}

func TestRenderPersonasGroupsByDepartment(t *testing.T) {
	output, err := Personas(catalogue)

	require.NoError(t, err)
	assert.Contains(t, output, "personas: 3")
	assert.Contains(t, output, "Executive Leadership")
	assert.Contains(t, output, "Technology")
	assert.Contains(t, output, "(garrett)")
	assert.Contains(t, output, "Strategy")
	assert.Equal(t, 1, strings.Count(output, "Executive Leadership"))
	assert.Less(t, strings.Index(output, "Steve"), strings.Index(output, "Technology"))
}

func TestRenderPersonasEmpty(t *testing.T) {
	output, err := Personas(nil)

	require.NoError(t, err)
	assert.Contains(t, output, "No personas loaded.")
}

func TestRenderResponsesUsesCatalogueOrder(t *testing.T) {
	output, err := Responses(catalogue, application.OrchestrationResult{
		Responses: map[domain.PersonaID]string{
			"steve":   "Ship it.",
			"garrett": "Think bigger.",
			"melon":   application.FallbackResponse,
		},
		AnsweredCount: 2,
	})

	require.NoError(t, err)
	assert.Contains(t, output, "answered: 2 of 3")
	assert.Contains(t, output, "Garrett, Chief Executive Officer (CEO)")
	assert.Contains(t, output, "Think bigger.")
	assert.Contains(t, output, application.FallbackResponse)
	assert.Less(t, strings.Index(output, "Think bigger."), strings.Index(output, "Ship it."))
}

func TestRenderResponsesEmpty(t *testing.T) {
	output, err := Responses(catalogue, application.OrchestrationResult{Responses: map[domain.PersonaID]string{}})

	require.NoError(t, err)
	assert.Contains(t, output, "No known personas were selected.")
}

func TestRenderHistory(t *testing.T) {
	ts := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := History(catalogue, []domain.ConversationTurn{
		{
			Timestamp:  ts,
			Message:    "Should we expand to Europe?",
			PersonaIDs: []domain.PersonaID{"melon"},
			Responses:  map[domain.PersonaID]string{"melon": "Only with a CDN."},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "turns: 1")
	assert.Contains(t, output, "2026-02-14 11:00:00")
	assert.Contains(t, output, "Should we expand to Europe?")
	assert.Contains(t, output, "Only with a CDN.")

	empty, err := History(catalogue, nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "No conversations yet.")
}

func TestRenderAnalytics(t *testing.T) {
	most := domain.PersonaID("steve")

	output, err := Analytics(catalogue, domain.AnalyticsSnapshot{
		TotalConversations:  1500,
		PersonaUsage:        map[domain.PersonaID]int64{"steve": 4, "melon": 2},
		DailyStats:          map[string]int64{"2026-02-14": 3, "2026-02-13": 1},
		AverageResponseTime: 1.25,
		MostUsedPersona:     &most,
	})

	require.NoError(t, err)
	assert.Contains(t, output, "conversations: 1.5k")
	assert.Contains(t, output, "average response time: 1.25s")
	assert.Contains(t, output, "most used: Steve, Chief Product Officer (CPO)")
	assert.Contains(t, output, "[========================]")
	assert.Less(t, strings.Index(output, "2026-02-13"), strings.Index(output, "2026-02-14"))
}

func TestRenderAnalyticsWithoutUsage(t *testing.T) {
	output, err := Analytics(catalogue, domain.AnalyticsSnapshot{})

	require.NoError(t, err)
	assert.Contains(t, output, "most used: n/a")
	assert.Contains(t, output, "No persona usage recorded.")
	assert.Contains(t, output, "No daily activity recorded.")
}

func TestRenderHealth(t *testing.T) {
	output, err := Health(application.HealthStatus{
		Status:             application.HealthStatusHealthy,
		Timestamp:          time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC),
		Services:           map[string]bool{"slack": true, "notion": false},
		PersonasLoaded:     18,
		TotalConversations: 7,
	})

	require.NoError(t, err)
	assert.Contains(t, output, "status: healthy")
	assert.Contains(t, output, "2026-02-14T11:00:00Z")
	assert.Contains(t, output, "personas loaded: 18")
	assert.Contains(t, output, "slack: configured")
	assert.Contains(t, output, "notion: not configured")
	assert.Less(t, strings.Index(output, "notion"), strings.Index(output, "slack"))
}

func TestRenderProbes(t *testing.T) {
	output, err := Probes([]application.ProbeResult{
		{Service: "slack", Success: true, Message: "Message sent to Slack"},
		{Service: "notion", Error: "notion not configured"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "services: 2")
	assert.Contains(t, output, "slack: ok Message sent to Slack")
	assert.Contains(t, output, "notion: failed notion not configured")
}

func TestRenderShareBarClampsWidth(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "", renderShareBar(0.5, 0, s))
	assert.Contains(t, renderShareBar(2, 4, s), "====")
	assert.Contains(t, renderShareBar(-1, 4, s), "----")
}

func TestSanitizeForTerminalKeepsLayout(t *testing.T) {
	assert.Equal(t, "line one\nline\ttwo", sanitizeForTerminal("line one\nline\ttwo\x1b\x07"))
}
