package prompt

import (
	"fmt"

	"github.com/killallgit/promptvault/pkg/placeholder"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// ChatPromptTemplate is an ordered list of role-tagged message templates
type ChatPromptTemplate struct {
	messages         []prompts.MessageFormatter
	partialVariables map[string]any
}

// NewChatTemplate creates a new chat prompt template
func NewChatTemplate(messages []prompts.MessageFormatter) *ChatPromptTemplate {
	return &ChatPromptTemplate{
		messages:         messages,
		partialVariables: make(map[string]any),
	}
}

// NewChatTemplateFromMessages creates a chat template from message definitions
func NewChatTemplateFromMessages(messages []MessageDefinition) (*ChatPromptTemplate, error) {
	formatters := make([]prompts.MessageFormatter, 0, len(messages))

	for _, msg := range messages {
		formatter, err := NewMessageTemplate(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to create message formatter: %w", err)
		}
		formatters = append(formatters, formatter)
	}

	return NewChatTemplate(formatters), nil
}

// Kind reports KindChat
func (c *ChatPromptTemplate) Kind() Kind {
	return KindChat
}

// Messages returns the message templates in conversation order
func (c *ChatPromptTemplate) Messages() []prompts.MessageFormatter {
	out := make([]prompts.MessageFormatter, len(c.messages))
	copy(out, c.messages)
	return out
}

// Format formats the template with the given values as a string
func (c *ChatPromptTemplate) Format(values map[string]any) (string, error) {
	return c.langchain().Format(c.mergeValues(values))
}

// FormatPrompt formats the template as a prompt value
func (c *ChatPromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	return c.langchain().FormatPrompt(c.mergeValues(values))
}

// FormatMessages formats the template as chat messages
func (c *ChatPromptTemplate) FormatMessages(values map[string]any) ([]llms.ChatMessage, error) {
	return c.langchain().FormatMessages(c.mergeValues(values))
}

// GetInputVariables returns the input variable names in first-occurrence
// order across messages, excluding partial variables
func (c *ChatPromptTemplate) GetInputVariables() []string {
	seen := make(map[string]bool)
	vars := make([]string, 0)

	for _, msg := range c.messages {
		for _, v := range msg.GetInputVariables() {
			if seen[v] {
				continue
			}
			seen[v] = true
			if _, partial := c.partialVariables[v]; !partial {
				vars = append(vars, v)
			}
		}
	}

	return vars
}

// WithPartialVariables creates a new template with partial variables set
func (c *ChatPromptTemplate) WithPartialVariables(partials map[string]any) *ChatPromptTemplate {
	newTemplate := &ChatPromptTemplate{
		messages:         c.messages,
		partialVariables: make(map[string]any),
	}

	for k, v := range c.partialVariables {
		newTemplate.partialVariables[k] = v
	}
	for k, v := range partials {
		newTemplate.partialVariables[k] = v
	}

	return newTemplate
}

func (c *ChatPromptTemplate) langchain() prompts.ChatPromptTemplate {
	return prompts.ChatPromptTemplate{
		Messages:         c.messages,
		PartialVariables: c.partialVariables,
	}
}

// mergeValues merges partial variables with provided values
func (c *ChatPromptTemplate) mergeValues(values map[string]any) map[string]any {
	merged := make(map[string]any, len(c.partialVariables)+len(values))
	for k, v := range c.partialVariables {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}

// MessageDefinition defines a message in a chat template. Format defaults to
// f-string; Variables are derived from the template text when empty.
type MessageDefinition struct {
	Role      string                 `json:"role" yaml:"role"`
	Template  string                 `json:"template" yaml:"template"`
	Variables []string               `json:"variables,omitempty" yaml:"variables,omitempty"`
	Format    prompts.TemplateFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// NewMessageTemplate creates a langchaingo message template from a definition
func NewMessageTemplate(def MessageDefinition) (prompts.MessageFormatter, error) {
	role, err := ParseRole(def.Role)
	if err != nil {
		return nil, err
	}

	format := def.Format
	if format == "" {
		format = prompts.TemplateFormatFString
	}

	vars := def.Variables
	if len(vars) == 0 {
		vars, err = placeholder.Variables(def.Template, format)
		if err != nil {
			return nil, err
		}
	}

	pt := prompts.PromptTemplate{
		Template:       def.Template,
		InputVariables: vars,
		TemplateFormat: format,
	}

	switch role {
	case RoleSystem:
		return prompts.SystemMessagePromptTemplate{Prompt: pt}, nil
	case RoleHuman:
		return prompts.HumanMessagePromptTemplate{Prompt: pt}, nil
	default:
		return prompts.AIMessagePromptTemplate{Prompt: pt}, nil
	}
}

// QuickChatTemplate creates a system + human f-string chat template
func QuickChatTemplate(systemPrompt, humanPrompt string) (*ChatPromptTemplate, error) {
	return NewChatTemplateFromMessages([]MessageDefinition{
		{Role: string(RoleSystem), Template: systemPrompt},
		{Role: string(RoleHuman), Template: humanPrompt},
	})
}
