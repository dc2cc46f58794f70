package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// Kind tags the shape of a template so callers can dispatch without
// inspecting concrete types.
type Kind string

const (
	KindPrompt      Kind = "prompt"
	KindChat        Kind = "chat"
	KindFewShot     Kind = "few_shot"
	KindFewShotChat Kind = "few_shot_chat"
)

// IsFewShot reports whether the kind is one of the few-shot shapes.
func (k Kind) IsFewShot() bool {
	return k == KindFewShot || k == KindFewShotChat
}

// Role is the author of a message in a chat template
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
)

// ParseRole maps a role name to a Role. "assistant" and "user" are accepted
// as aliases because template files are often written with those names.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return RoleSystem, nil
	case "human", "user":
		return RoleHuman, nil
	case "ai", "assistant":
		return RoleAI, nil
	default:
		return "", fmt.Errorf("unknown message role: %s", s)
	}
}

// Template represents a generic prompt template interface
type Template interface {
	// Format formats the template with the given variables
	Format(values map[string]any) (string, error)

	// FormatPrompt formats the template as a prompt value
	FormatPrompt(values map[string]any) (llms.PromptValue, error)

	// GetInputVariables returns the list of input variable names
	GetInputVariables() []string

	// Kind reports the template shape
	Kind() Kind
}

// ChatTemplate represents a chat-based prompt template
type ChatTemplate interface {
	Template

	// FormatMessages formats the template as chat messages
	FormatMessages(values map[string]any) ([]llms.ChatMessage, error)

	// Messages returns the message templates in conversation order
	Messages() []prompts.MessageFormatter
}

// Loader loads templates from various sources
type Loader interface {
	// Load loads a template by name/path
	Load(name string) (Template, error)

	// LoadChat loads a chat template by name/path
	LoadChat(name string) (ChatTemplate, error)
}
