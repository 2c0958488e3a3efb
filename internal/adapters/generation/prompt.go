package generation

import (
	"fmt"
	"strings"

	"github.com/bnema/boardroom/internal/domain"
)

// SystemPrompt renders the in-character instructions for persona, with the
// shared conversation context appended when present.
func SystemPrompt(persona domain.Persona, conversationContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s at a company.\n\n", persona.Name, persona.Title)
	fmt.Fprintf(&b, "Your personality: %s\n", persona.Personality)
	fmt.Fprintf(&b, "Your expertise: %s\n", strings.Join(persona.Expertise, ", "))
	fmt.Fprintf(&b, "Department: %s\n\n", persona.Department)
	b.WriteString("Respond as this executive would, drawing on your specific expertise and personality.\n")
	b.WriteString("Keep responses focused, actionable, and in character. Aim for 2-3 paragraphs maximum.\n")

	if conversationContext != "" {
		fmt.Fprintf(&b, "\n\nConversation context: %s", conversationContext)
	}

	return b.String()
}
