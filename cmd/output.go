package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/domain"
)

type personaJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Department  string   `json:"department"`
	Personality string   `json:"personality"`
	Expertise   []string `json:"expertise"`
}

type orchestrationJSON struct {
	Responses     map[string]string `json:"responses"`
	Timestamp     string            `json:"timestamp"`
	AnsweredCount int               `json:"answered_count"`
}

type healthJSON struct {
	Status             string          `json:"status"`
	Timestamp          string          `json:"timestamp"`
	Services           map[string]bool `json:"services"`
	PersonasLoaded     int             `json:"personas_loaded"`
	TotalConversations int64           `json:"total_conversations"`
}

type probeJSON struct {
	Service string `json:"service"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRendered(cmd *cobra.Command, rendered string, err error) error {
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func toPersonasJSON(personas []domain.Persona) []personaJSON {
	out := make([]personaJSON, 0, len(personas))
	for _, persona := range personas {
		expertise := persona.Expertise
		if expertise == nil {
			expertise = []string{}
		}
		out = append(out, personaJSON{
			ID:          string(persona.ID),
			Name:        persona.Name,
			Title:       persona.Title,
			Department:  persona.Department,
			Personality: persona.Personality,
			Expertise:   expertise,
		})
	}

	return out
}

func toOrchestrationJSON(result application.OrchestrationResult) orchestrationJSON {
	responses := make(map[string]string, len(result.Responses))
	for id, text := range result.Responses {
		responses[string(id)] = text
	}

	return orchestrationJSON{
		Responses:     responses,
		Timestamp:     result.Timestamp.Format(time.RFC3339),
		AnsweredCount: result.AnsweredCount,
	}
}

func toHealthJSON(status application.HealthStatus) healthJSON {
	return healthJSON{
		Status:             status.Status,
		Timestamp:          status.Timestamp.Format(time.RFC3339),
		Services:           status.Services,
		PersonasLoaded:     status.PersonasLoaded,
		TotalConversations: status.TotalConversations,
	}
}

func toProbesJSON(results []application.ProbeResult) []probeJSON {
	out := make([]probeJSON, 0, len(results))
	for _, result := range results {
		out = append(out, probeJSON(result))
	}

	return out
}
