package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/boardroom/internal/domain"
)

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	persona := domain.Persona{
		ID:          "xander",
		Name:        "Xander",
		Title:       "Chief Financial Officer (CFO)",
		Department:  "Finance",
		Personality: "Financial strategist focused on ROI analysis.",
		Expertise:   []string{"Financial Strategy", "ROI Analysis"},
	}

	prompt := SystemPrompt(persona, "")
	assert.Contains(t, prompt, "You are Xander, Chief Financial Officer (CFO) at a company.")
	assert.Contains(t, prompt, "Your expertise: Financial Strategy, ROI Analysis")
	assert.Contains(t, prompt, "Department: Finance")
	assert.NotContains(t, prompt, "Conversation context")

	withContext := SystemPrompt(persona, "User: a | User: b")
	assert.Contains(t, withContext, "\n\nConversation context: User: a | User: b")
}

func TestUnavailableAlwaysFails(t *testing.T) {
	t.Parallel()

	_, err := Unavailable{}.Generate(context.Background(), domain.Persona{ID: "steve"}, "hi", "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	custom := errors.New("openai api key missing")
	_, err = Unavailable{Err: custom}.Generate(context.Background(), domain.Persona{ID: "steve"}, "hi", "")
	assert.ErrorIs(t, err, custom)
}
