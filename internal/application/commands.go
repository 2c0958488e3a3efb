package application

import "github.com/bnema/boardroom/internal/domain"

type OrchestrateCommand struct {
	Message    string
	PersonaIDs []domain.PersonaID
}

type ProbeCommand struct {
	Services []string
}
