package application

import (
	"time"

	"github.com/bnema/boardroom/internal/domain"
)

type OrchestrationResult struct {
	Responses     map[domain.PersonaID]string
	Timestamp     time.Time
	AnsweredCount int
}

const HealthStatusHealthy = "healthy"

type HealthStatus struct {
	Status             string
	Timestamp          time.Time
	Services           map[string]bool
	PersonasLoaded     int
	TotalConversations int64
}

type ProbeResult struct {
	Service string
	Success bool
	Message string
	Error   string
}
