package catalog

import (
	"strconv"
	"time"
)

// DefaultVariantName is used when a prompt is created without a variant name
const DefaultVariantName = "variant-001"

// DraftVersion is the mutable working copy of a prompt. Numbered versions
// are immutable snapshots starting at 1.
const DraftVersion = 0

// Role is a message author as the catalog spells it
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TemplateType distinguishes chat variants from single-text variants
type TemplateType string

const (
	TemplateTypeChat TemplateType = "CHAT"
	TemplateTypeText TemplateType = "TEXT"
)

// Message is one role-tagged entry of a chat variant. Text uses {{name}}
// placeholders.
type Message struct {
	Role Role   `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// InferenceConfig holds optional model parameters bound to a variant
type InferenceConfig struct {
	MaxTokens     *int32   `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP          *float32 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty"`
}

// Variant is the catalog's stored representation of a prompt's content.
// For CHAT variants Messages is set; for TEXT variants Text is set.
// InputVariables lists every placeholder exactly once.
type Variant struct {
	Name           string           `json:"name" yaml:"name"`
	Model          ModelID          `json:"model_id" yaml:"model_id"`
	TemplateType   TemplateType     `json:"template_type" yaml:"template_type"`
	Messages       []Message        `json:"messages,omitempty" yaml:"messages,omitempty"`
	Text           string           `json:"text,omitempty" yaml:"text,omitempty"`
	InputVariables []string         `json:"input_variables" yaml:"input_variables"`
	Inference      *InferenceConfig `json:"inference,omitempty" yaml:"inference,omitempty"`
}

// CreatePromptInput describes a new prompt and its single variant
type CreatePromptInput struct {
	Name                     string
	Description              string
	Variant                  Variant
	DefaultVariant           string
	Tags                     map[string]string
	CustomerEncryptionKeyArn string
}

// CreateVersionInput requests an immutable snapshot of a prompt's draft
type CreateVersionInput struct {
	PromptID    string
	Description string
	Tags        map[string]string
}

// ListInput filters and pages prompt summaries. Zero MaxResults lists all.
type ListInput struct {
	Name       string
	PromptID   string
	MaxResults int
}

// PromptRecord is the catalog's answer to a create or version request
type PromptRecord struct {
	ID        string
	Arn       string
	Name      string
	Version   int
	CreatedAt time.Time
}

// PromptSummary is one entry of a prompt listing
type PromptSummary struct {
	ID          string
	Arn         string
	Name        string
	Description string
	Version     int
	UpdatedAt   time.Time
}

// DeleteResult is the catalog's answer to a delete request
type DeleteResult struct {
	ID      string
	Version int
	Status  string
}

// FormatVersion renders a version the way the catalog names it
func FormatVersion(v int) string {
	if v == DraftVersion {
		return "DRAFT"
	}
	return strconv.Itoa(v)
}

// ParseVersion is the inverse of FormatVersion. An empty string is the draft.
func ParseVersion(s string) (int, error) {
	if s == "" || s == "DRAFT" {
		return DraftVersion, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, &InvalidVersionError{Version: s}
	}
	return v, nil
}
