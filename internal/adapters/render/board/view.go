package board

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	usageBarWidth   = 24
)

// Personas renders the catalogue grouped by department, keeping the order in
// which departments first appear.
func Personas(personas []domain.Persona) (string, error) {
	return render(func(s styles) string {
		return renderPersonas(personas, s)
	})
}

// Responses renders one orchestration result. Catalogue order decides the
// order of the answers.
func Responses(catalogue []domain.Persona, result application.OrchestrationResult) (string, error) {
	return render(func(s styles) string {
		return renderResponses(catalogue, result, s)
	})
}

func History(catalogue []domain.Persona, turns []domain.ConversationTurn) (string, error) {
	return render(func(s styles) string {
		return renderHistory(catalogue, turns, s)
	})
}

func Analytics(catalogue []domain.Persona, snapshot domain.AnalyticsSnapshot) (string, error) {
	return render(func(s styles) string {
		return renderAnalytics(catalogue, snapshot, s)
	})
}

func Health(status application.HealthStatus) (string, error) {
	return render(func(s styles) string {
		return renderHealth(status, s)
	})
}

func Probes(results []application.ProbeResult) (string, error) {
	return render(func(s styles) string {
		return renderProbes(results, s)
	})
}

func renderPersonas(personas []domain.Persona, s styles) string {
	lines := []string{
		s.title.Render("Executive Boardroom"),
		s.header.Render(fmt.Sprintf("personas: %d", len(personas))),
	}

	if len(personas) == 0 {
		lines = append(lines, s.empty.Render("No personas loaded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	departments := make([]string, 0)
	grouped := make(map[string][]domain.Persona)
	for _, persona := range personas {
		department := strings.TrimSpace(persona.Department)
		if department == "" {
			department = "Other"
		}
		if _, ok := grouped[department]; !ok {
			departments = append(departments, department)
		}
		grouped[department] = append(grouped[department], persona)
	}

	for _, department := range departments {
		parts := []string{s.department.Render(department)}
		for _, persona := range grouped[department] {
			parts = append(parts, personaLine(persona, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func personaLine(persona domain.Persona, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		s.persona.Render(persona.Name),
		" ",
		s.meta.Render(fmt.Sprintf("(%s)", persona.ID)),
	)
	if title := strings.TrimSpace(persona.Title); title != "" {
		line += " " + s.detail.Render(title)
	}
	if len(persona.Expertise) > 0 {
		line += "\n    " + s.meta.Render(strings.Join(persona.Expertise, ", "))
	}

	return line
}

func renderResponses(catalogue []domain.Persona, result application.OrchestrationResult, s styles) string {
	lines := []string{
		s.title.Render("Boardroom Responses"),
		s.header.Render(fmt.Sprintf("answered: %d of %d", result.AnsweredCount, len(result.Responses))),
	}

	if len(result.Responses) == 0 {
		lines = append(lines, s.empty.Render("No known personas were selected."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, id := range orderedIDs(catalogue, result.Responses) {
		lines = append(lines, s.section.Render(responseBlock(catalogue, id, result.Responses[id], s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func responseBlock(catalogue []domain.Persona, id domain.PersonaID, text string, s styles) string {
	body := s.response.Render(sanitizeForTerminal(text))
	if text == application.FallbackResponse {
		body = s.fallback.Render(text)
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.persona.Render(displayName(catalogue, id)), body)
}

func renderHistory(catalogue []domain.Persona, turns []domain.ConversationTurn, s styles) string {
	lines := []string{
		s.title.Render("Conversation History"),
		s.header.Render(fmt.Sprintf("turns: %d", len(turns))),
	}

	if len(turns) == 0 {
		lines = append(lines, s.empty.Render("No conversations yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, turn := range turns {
		parts := []string{
			s.meta.Render(turn.Timestamp.Format(timestampLayout)),
			s.key.Render("User: ") + s.detail.Render(sanitizeForTerminal(turn.Message)),
		}
		for _, id := range orderedIDs(catalogue, turn.Responses) {
			parts = append(parts, responseBlock(catalogue, id, turn.Responses[id], s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAnalytics(catalogue []domain.Persona, snapshot domain.AnalyticsSnapshot, s styles) string {
	mostUsed := "n/a"
	if snapshot.MostUsedPersona != nil {
		mostUsed = displayName(catalogue, *snapshot.MostUsedPersona)
	}

	lines := []string{
		s.title.Render("Boardroom Analytics"),
		s.key.Render("conversations: ") + s.detail.Render(domain.CompactCount(snapshot.TotalConversations)),
		s.key.Render("average response time: ") + s.detail.Render(fmt.Sprintf("%.2fs", snapshot.AverageResponseTime)),
		s.key.Render("most used: ") + s.detail.Render(mostUsed),
	}

	lines = append(lines, s.section.Render(usageSection(catalogue, snapshot.PersonaUsage, s)))
	lines = append(lines, s.section.Render(dailySection(snapshot.DailyStats, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func usageSection(catalogue []domain.Persona, usage map[domain.PersonaID]int64, s styles) string {
	parts := []string{s.department.Render("Persona usage")}
	if len(usage) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("No persona usage recorded."))...)
	}

	ids := make([]domain.PersonaID, 0, len(usage))
	var peak int64
	for id, count := range usage {
		ids = append(ids, id)
		if count > peak {
			peak = count
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if usage[ids[i]] != usage[ids[j]] {
			return usage[ids[i]] > usage[ids[j]]
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		share := float64(usage[id]) / float64(peak)
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			"  ",
			renderShareBar(share, usageBarWidth, s),
			" ",
			lipgloss.NewStyle().Foreground(interpolateColor(share, 0, 1)).Render(domain.CompactCount(usage[id])),
			" ",
			s.detail.Render(displayName(catalogue, id)),
		)
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func dailySection(daily map[string]int64, s styles) string {
	parts := []string{s.department.Render("Daily conversations")}
	if len(daily) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("No daily activity recorded."))...)
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		parts = append(parts, "  "+s.key.Render(day+": ")+s.detail.Render(domain.CompactCount(daily[day])))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderHealth(status application.HealthStatus, s styles) string {
	statusStyle := s.ok
	if status.Status != application.HealthStatusHealthy {
		statusStyle = s.warning
	}

	lines := []string{
		s.title.Render("Boardroom Health"),
		s.key.Render("status: ") + statusStyle.Render(status.Status),
		s.key.Render("timestamp: ") + s.detail.Render(formatTimestamp(status.Timestamp)),
		s.key.Render("personas loaded: ") + s.detail.Render(fmt.Sprintf("%d", status.PersonasLoaded)),
		s.key.Render("total conversations: ") + s.detail.Render(domain.CompactCount(status.TotalConversations)),
	}

	services := make([]string, 0, len(status.Services))
	for name := range status.Services {
		services = append(services, name)
	}
	sort.Strings(services)

	parts := []string{s.department.Render("Services")}
	if len(services) == 0 {
		parts = append(parts, s.empty.Render("No services known."))
	}
	for _, name := range services {
		state := s.warning.Render("not configured")
		if status.Services[name] {
			state = s.ok.Render("configured")
		}
		parts = append(parts, "  "+s.key.Render(name+": ")+state)
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProbes(results []application.ProbeResult, s styles) string {
	lines := []string{
		s.title.Render("Integration Probes"),
		s.header.Render(fmt.Sprintf("services: %d", len(results))),
	}

	if len(results) == 0 {
		lines = append(lines, s.empty.Render("No services probed."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, result := range results {
		line := s.key.Render(result.Service+": ") + s.ok.Render("ok") + " " + s.detail.Render(result.Message)
		if !result.Success {
			line = s.key.Render(result.Service+": ") + s.warning.Render("failed") + " " + s.detail.Render(result.Error)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func orderedIDs(catalogue []domain.Persona, responses map[domain.PersonaID]string) []domain.PersonaID {
	ids := make([]domain.PersonaID, 0, len(responses))
	seen := make(map[domain.PersonaID]struct{}, len(responses))
	for _, persona := range catalogue {
		if _, ok := responses[persona.ID]; ok {
			ids = append(ids, persona.ID)
			seen[persona.ID] = struct{}{}
		}
	}

	rest := make([]domain.PersonaID, 0)
	for id := range responses {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(ids, rest...)
}

func displayName(catalogue []domain.Persona, id domain.PersonaID) string {
	for _, persona := range catalogue {
		if persona.ID == id {
			return persona.DisplayName()
		}
	}

	return string(id)
}

// sanitizeForTerminal drops control characters other than newlines and tabs
// so model output cannot drive the terminal.
func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}

	return ts.Format(time.RFC3339)
}

func renderShareBar(share float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * share))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	colorCode := int(240.0 + 15.0*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
