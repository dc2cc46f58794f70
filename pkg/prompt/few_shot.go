package prompt

import (
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// Example is one input/output pair shown to the model before the prompt
type Example map[string]string

// FewShotChatTemplate renders every example through an example chat template
// and prepends the resulting messages to the final chat template.
type FewShotChatTemplate struct {
	examplePrompt *ChatPromptTemplate
	examples      []Example
	prompt        *ChatPromptTemplate
}

// NewFewShotChatTemplate creates a few-shot chat template
func NewFewShotChatTemplate(examplePrompt *ChatPromptTemplate, examples []Example, prompt *ChatPromptTemplate) *FewShotChatTemplate {
	return &FewShotChatTemplate{
		examplePrompt: examplePrompt,
		examples:      examples,
		prompt:        prompt,
	}
}

// Kind reports KindFewShotChat
func (f *FewShotChatTemplate) Kind() Kind {
	return KindFewShotChat
}

// Messages returns the final prompt's message templates. The examples are
// only available after formatting.
func (f *FewShotChatTemplate) Messages() []prompts.MessageFormatter {
	return f.prompt.Messages()
}

// FormatMessages renders the examples followed by the prompt messages
func (f *FewShotChatTemplate) FormatMessages(values map[string]any) ([]llms.ChatMessage, error) {
	var out []llms.ChatMessage
	for _, ex := range f.examples {
		exValues := make(map[string]any, len(ex))
		for k, v := range ex {
			exValues[k] = v
		}
		msgs, err := f.examplePrompt.FormatMessages(exValues)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}

	msgs, err := f.prompt.FormatMessages(values)
	if err != nil {
		return nil, err
	}

	return append(out, msgs...), nil
}

// FormatPrompt formats the template as a prompt value
func (f *FewShotChatTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	msgs, err := f.FormatMessages(values)
	if err != nil {
		return nil, err
	}
	return prompts.ChatPromptValue(msgs), nil
}

// Format formats the template as a string
func (f *FewShotChatTemplate) Format(values map[string]any) (string, error) {
	value, err := f.FormatPrompt(values)
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

// GetInputVariables returns the variables of the final prompt
func (f *FewShotChatTemplate) GetInputVariables() []string {
	return f.prompt.GetInputVariables()
}
