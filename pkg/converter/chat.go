// Package converter maps chat templates to catalog variants and back.
package converter

import (
	"fmt"
	"slices"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/placeholder"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/tmc/langchaingo/prompts"
)

// VariantOption configures optional variant fields
type VariantOption func(*catalog.Variant)

// WithVariantName sets the variant name (default catalog.DefaultVariantName)
func WithVariantName(name string) VariantOption {
	return func(v *catalog.Variant) {
		if name != "" {
			v.Name = name
		}
	}
}

// WithInference binds inference parameters to the variant
func WithInference(cfg *catalog.InferenceConfig) VariantOption {
	return func(v *catalog.Variant) {
		v.Inference = cfg
	}
}

// ToVariant converts a template into a catalog variant bound to model.
// Chat templates become CHAT variants and prompt templates TEXT variants.
// Few-shot templates are rejected before any message is looked at.
func ToVariant(t prompt.Template, model catalog.ModelID, opts ...VariantOption) (*catalog.Variant, error) {
	kind := t.Kind()
	if kind.IsFewShot() {
		return nil, &UnsupportedTemplateTypeError{Type: string(kind)}
	}
	if !model.Valid() {
		return nil, &UnsupportedModelError{Model: string(model)}
	}

	v := &catalog.Variant{
		Name:  catalog.DefaultVariantName,
		Model: model,
	}

	switch kind {
	case prompt.KindChat:
		chat, ok := t.(prompt.ChatTemplate)
		if !ok {
			return nil, &UnsupportedTemplateTypeError{Type: fmt.Sprintf("%T", t)}
		}
		if err := fillChat(v, chat.Messages()); err != nil {
			return nil, err
		}
	case prompt.KindPrompt:
		text, ok := t.(*prompt.PromptTemplate)
		if !ok {
			return nil, &UnsupportedTemplateTypeError{Type: fmt.Sprintf("%T", t)}
		}
		remote, vars, err := ToRemote(text.Text(), text.TemplateFormat())
		if err != nil {
			return nil, err
		}
		v.TemplateType = catalog.TemplateTypeText
		v.Text = remote
		v.InputVariables = vars
	default:
		return nil, &UnsupportedTemplateTypeError{Type: string(kind)}
	}

	for _, opt := range opts {
		opt(v)
	}

	if err := checkVariables(v); err != nil {
		return nil, err
	}

	return v, nil
}

func fillChat(v *catalog.Variant, messages []prompts.MessageFormatter) error {
	v.TemplateType = catalog.TemplateTypeChat
	v.Messages = make([]catalog.Message, 0, len(messages))
	v.InputVariables = make([]string, 0)
	seen := make(map[string]bool)

	for i, m := range messages {
		msg, vars, err := ConvertMessage(m)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		v.Messages = append(v.Messages, msg)

		for _, name := range vars {
			if !seen[name] {
				seen[name] = true
				v.InputVariables = append(v.InputVariables, name)
			}
		}
	}

	return nil
}

// checkVariables verifies the declared variables are exactly the
// placeholders found in the variant text.
func checkVariables(v *catalog.Variant) error {
	var found []string
	if v.TemplateType == catalog.TemplateTypeText {
		found = placeholder.RemoteVariables(v.Text)
	} else {
		seen := make(map[string]bool)
		for _, m := range v.Messages {
			for _, name := range placeholder.RemoteVariables(m.Text) {
				if !seen[name] {
					seen[name] = true
					found = append(found, name)
				}
			}
		}
	}

	declared := slices.Clone(v.InputVariables)
	slices.Sort(declared)
	declared = slices.Compact(declared)
	slices.Sort(found)
	if len(declared) != len(v.InputVariables) || !slices.Equal(declared, found) {
		return fmt.Errorf("variant %s declares variables %v but its text references %v", v.Name, v.InputVariables, found)
	}

	return nil
}

// ToChatTemplate rebuilds a chat template from a CHAT variant. The declared
// variables and model id are not carried over: variables are re-derived from
// the text and the model stays bound to the catalog variant.
func ToChatTemplate(v *catalog.Variant) (*prompt.ChatPromptTemplate, error) {
	if v.TemplateType != catalog.TemplateTypeChat {
		return nil, &UnsupportedTemplateTypeError{Type: string(v.TemplateType)}
	}

	messages := make([]prompts.MessageFormatter, 0, len(v.Messages))
	for i, m := range v.Messages {
		msg, err := RevertMessage(m)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, msg)
	}

	return prompt.NewChatTemplate(messages), nil
}

// ToTemplate rebuilds whichever template shape the variant stores
func ToTemplate(v *catalog.Variant) (prompt.Template, error) {
	switch v.TemplateType {
	case catalog.TemplateTypeChat:
		return ToChatTemplate(v)
	case catalog.TemplateTypeText:
		return prompt.NewPromptTemplate(ToLocal(v.Text), placeholder.RemoteVariables(v.Text))
	default:
		return nil, &UnsupportedTemplateTypeError{Type: string(v.TemplateType)}
	}
}
