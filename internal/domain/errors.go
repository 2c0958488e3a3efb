package domain

import "errors"

var (
	ErrPersonaNotFound     = errors.New("persona not found")
	ErrDuplicatePersona    = errors.New("duplicate persona id")
	ErrEmptyMessage        = errors.New("message is required")
	ErrNotConfigured       = errors.New("not configured")
	ErrOrchestrationFailed = errors.New("orchestration failed")
)
