package prompt

import (
	"fmt"
	"strings"

	"github.com/killallgit/promptvault/pkg/placeholder"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// PromptTemplate is a single-string template that wraps langchaingo's
// PromptTemplate. It is stored in the catalog as a TEXT variant.
type PromptTemplate struct {
	template         prompts.PromptTemplate
	partialVariables map[string]any
}

// NewPromptTemplate creates a new f-string prompt template. Input variables
// are derived from the text when inputVars is empty.
func NewPromptTemplate(template string, inputVars []string) (*PromptTemplate, error) {
	return NewPromptTemplateWithFormat(template, inputVars, prompts.TemplateFormatFString)
}

// NewPromptTemplateWithFormat creates a prompt template in the given format
func NewPromptTemplateWithFormat(template string, inputVars []string, format prompts.TemplateFormat) (*PromptTemplate, error) {
	if len(inputVars) == 0 {
		vars, err := placeholder.Variables(template, format)
		if err != nil {
			return nil, err
		}
		inputVars = vars
	}

	return &PromptTemplate{
		template: prompts.PromptTemplate{
			Template:       template,
			InputVariables: inputVars,
			TemplateFormat: format,
		},
		partialVariables: make(map[string]any),
	}, nil
}

// Kind reports KindPrompt
func (p *PromptTemplate) Kind() Kind {
	return KindPrompt
}

// Text returns the raw template text
func (p *PromptTemplate) Text() string {
	return p.template.Template
}

// TemplateFormat returns the placeholder notation of the text
func (p *PromptTemplate) TemplateFormat() prompts.TemplateFormat {
	return p.template.TemplateFormat
}

// Format formats the template with the given values
func (p *PromptTemplate) Format(values map[string]any) (string, error) {
	merged := p.mergeValues(values)

	if err := p.validateVariables(merged); err != nil {
		return "", err
	}

	return p.template.Format(merged)
}

// FormatPrompt formats the template as a prompt value
func (p *PromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	merged := p.mergeValues(values)

	if err := p.validateVariables(merged); err != nil {
		return nil, err
	}

	return p.template.FormatPrompt(merged)
}

// GetInputVariables returns the list of input variable names
func (p *PromptTemplate) GetInputVariables() []string {
	return p.template.InputVariables
}

// WithPartialVariables creates a new template with partial variables set
func (p *PromptTemplate) WithPartialVariables(partials map[string]any) *PromptTemplate {
	newTemplate := &PromptTemplate{
		template:         p.template,
		partialVariables: make(map[string]any),
	}

	for k, v := range p.partialVariables {
		newTemplate.partialVariables[k] = v
	}
	for k, v := range partials {
		newTemplate.partialVariables[k] = v
	}

	return newTemplate
}

func (p *PromptTemplate) mergeValues(values map[string]any) map[string]any {
	merged := make(map[string]any, len(p.partialVariables)+len(values))
	for k, v := range p.partialVariables {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}

// validateVariables validates that all input variables are present
func (p *PromptTemplate) validateVariables(values map[string]any) error {
	var missing []string
	for _, varName := range p.template.InputVariables {
		if _, exists := values[varName]; !exists {
			missing = append(missing, varName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missing, ", "))
	}

	return nil
}
