package converter

import (
	"errors"
	"testing"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// toolMessage is a message formatter with no catalog role
type toolMessage struct{}

func (toolMessage) FormatMessages(map[string]any) ([]llms.ChatMessage, error) { return nil, nil }
func (toolMessage) GetInputVariables() []string                                { return nil }

func astronomyTemplate(t *testing.T) *prompt.ChatPromptTemplate {
	t.Helper()
	chat, err := prompt.NewChatTemplateFromMessages([]prompt.MessageDefinition{
		{Role: "system", Template: "You are an astronomer. Answer questions about {topic}."},
		{Role: "human", Template: "{user_input}"},
		{Role: "ai", Template: "Happy to help with {topic}."},
	})
	require.NoError(t, err)
	return chat
}

func TestToVariant(t *testing.T) {
	t.Run("chat template", func(t *testing.T) {
		v, err := ToVariant(astronomyTemplate(t), catalog.ClaudeV35Sonnet)
		require.NoError(t, err)

		assert.Equal(t, catalog.DefaultVariantName, v.Name)
		assert.Equal(t, catalog.ClaudeV35Sonnet, v.Model)
		assert.Equal(t, catalog.TemplateTypeChat, v.TemplateType)
		assert.Equal(t, []string{"topic", "user_input"}, v.InputVariables)
		assert.Equal(t, []catalog.Message{
			{Role: catalog.RoleSystem, Text: "You are an astronomer. Answer questions about {{topic}}."},
			{Role: catalog.RoleUser, Text: "{{user_input}}"},
			{Role: catalog.RoleAssistant, Text: "Happy to help with {{topic}}."},
		}, v.Messages)
	})

	t.Run("options", func(t *testing.T) {
		temp := float32(0.2)
		v, err := ToVariant(astronomyTemplate(t), catalog.ClaudeV3Haiku,
			WithVariantName("concise"),
			WithInference(&catalog.InferenceConfig{Temperature: &temp}),
		)
		require.NoError(t, err)
		assert.Equal(t, "concise", v.Name)
		require.NotNil(t, v.Inference)
		assert.Equal(t, temp, *v.Inference.Temperature)
	})

	t.Run("empty variant name keeps the default", func(t *testing.T) {
		v, err := ToVariant(astronomyTemplate(t), catalog.ClaudeV3Haiku, WithVariantName(""))
		require.NoError(t, err)
		assert.Equal(t, catalog.DefaultVariantName, v.Name)
	})

	t.Run("text template", func(t *testing.T) {
		text, err := prompt.NewPromptTemplate("Summarize {doc} in {n} words", nil)
		require.NoError(t, err)

		v, err := ToVariant(text, catalog.NovaPro)
		require.NoError(t, err)
		assert.Equal(t, catalog.TemplateTypeText, v.TemplateType)
		assert.Equal(t, "Summarize {{doc}} in {{n}} words", v.Text)
		assert.Equal(t, []string{"doc", "n"}, v.InputVariables)
		assert.Empty(t, v.Messages)
	})

	t.Run("few-shot is rejected before the model is checked", func(t *testing.T) {
		examples, err := prompt.QuickChatTemplate("{q}", "{a}")
		require.NoError(t, err)
		fewShot := prompt.NewFewShotChatTemplate(examples, []prompt.Example{{"q": "1", "a": "2"}}, astronomyTemplate(t))

		_, err = ToVariant(fewShot, catalog.ModelID("not-a-model"))
		var unsupported *UnsupportedTemplateTypeError
		require.True(t, errors.As(err, &unsupported), "got %v", err)
		assert.Equal(t, string(prompt.KindFewShotChat), unsupported.Type)
	})

	t.Run("unsupported model", func(t *testing.T) {
		_, err := ToVariant(astronomyTemplate(t), catalog.ModelID("gpt-4"))
		var unsupported *UnsupportedModelError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "gpt-4", unsupported.Model)
	})

	t.Run("unsupported role", func(t *testing.T) {
		chat := prompt.NewChatTemplate([]prompts.MessageFormatter{
			prompts.GenericMessagePromptTemplate{
				Role:   "tool",
				Prompt: prompts.PromptTemplate{Template: "result", TemplateFormat: prompts.TemplateFormatFString},
			},
		})

		_, err := ToVariant(chat, catalog.ClaudeV35Sonnet)
		var unsupported *UnsupportedRoleError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "tool", unsupported.Role)
	})

	t.Run("unknown message formatter", func(t *testing.T) {
		chat := prompt.NewChatTemplate([]prompts.MessageFormatter{toolMessage{}})

		_, err := ToVariant(chat, catalog.ClaudeV35Sonnet)
		var unsupported *UnsupportedRoleError
		assert.True(t, errors.As(err, &unsupported))
	})

	t.Run("generic message with a known role", func(t *testing.T) {
		chat := prompt.NewChatTemplate([]prompts.MessageFormatter{
			&prompts.GenericMessagePromptTemplate{
				Role:   "user",
				Prompt: prompts.PromptTemplate{Template: "{q}", InputVariables: []string{"q"}},
			},
		})

		v, err := ToVariant(chat, catalog.ClaudeV35Sonnet)
		require.NoError(t, err)
		assert.Equal(t, catalog.RoleUser, v.Messages[0].Role)
	})

	t.Run("jinja2 messages are rejected", func(t *testing.T) {
		chat := prompt.NewChatTemplate([]prompts.MessageFormatter{
			prompts.HumanMessagePromptTemplate{Prompt: prompts.PromptTemplate{
				Template:       "{{ question }}",
				InputVariables: []string{"question"},
				TemplateFormat: prompts.TemplateFormatJinja2,
			}},
		})

		_, err := ToVariant(chat, catalog.ClaudeV35Sonnet)
		var unsupported *UnsupportedTemplateTypeError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "jinja2", unsupported.Type)
	})

	t.Run("malformed placeholder", func(t *testing.T) {
		chat := prompt.NewChatTemplate([]prompts.MessageFormatter{
			prompts.HumanMessagePromptTemplate{Prompt: prompts.PromptTemplate{Template: "{broken"}},
		})

		_, err := ToVariant(chat, catalog.ClaudeV35Sonnet)
		var malformed *MalformedTemplateError
		require.True(t, errors.As(err, &malformed))
		assert.Contains(t, err.Error(), "message 0")
	})
}

func TestRoundTrip(t *testing.T) {
	values := map[string]any{
		"topic":      "black holes",
		"user_input": "What happens at the event horizon?",
	}

	original := astronomyTemplate(t)
	v, err := ToVariant(original, catalog.ClaudeV35Sonnet)
	require.NoError(t, err)

	restored, err := ToChatTemplate(v)
	require.NoError(t, err)

	want, err := original.FormatMessages(values)
	require.NoError(t, err)
	got, err := restored.FormatMessages(values)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, original.GetInputVariables(), restored.GetInputVariables())
}

func TestRoundTripGoTemplate(t *testing.T) {
	original, err := prompt.NewChatTemplateFromMessages([]prompt.MessageDefinition{
		{Role: "system", Template: "Reply in {{.language}}.", Format: prompts.TemplateFormatGoTemplate},
		{Role: "human", Template: "{{.question}}", Format: prompts.TemplateFormatGoTemplate},
	})
	require.NoError(t, err)

	v, err := ToVariant(original, catalog.ClaudeV35Sonnet)
	require.NoError(t, err)
	assert.Equal(t, "Reply in {{language}}.", v.Messages[0].Text)

	restored, err := ToChatTemplate(v)
	require.NoError(t, err)

	values := map[string]any{"language": "Spanish", "question": "Hola?"}
	want, err := original.FormatMessages(values)
	require.NoError(t, err)
	got, err := restored.FormatMessages(values)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRoundTripLiteralBraces(t *testing.T) {
	t.Run("literal that repeats a placeholder is rejected", func(t *testing.T) {
		chat, err := prompt.NewChatTemplateFromMessages([]prompt.MessageDefinition{
			{Role: "human", Template: "{x} and literal {{{{x}}}}"},
		})
		require.NoError(t, err)

		_, err = ToVariant(chat, catalog.ClaudeV35Sonnet)
		var malformed *MalformedTemplateError
		require.True(t, errors.As(err, &malformed), "got %v", err)
		assert.Equal(t, -1, malformed.Offset)
	})

	t.Run("literal next to a placeholder survives", func(t *testing.T) {
		original, err := prompt.NewChatTemplateFromMessages([]prompt.MessageDefinition{
			{Role: "human", Template: "{x} and {{{x}}} and {{ x }}"},
		})
		require.NoError(t, err)

		v, err := ToVariant(original, catalog.ClaudeV35Sonnet)
		require.NoError(t, err)
		restored, err := ToChatTemplate(v)
		require.NoError(t, err)

		values := map[string]any{"x": "V"}
		want, err := original.FormatMessages(values)
		require.NoError(t, err)
		got, err := restored.FormatMessages(values)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, "V and {V} and { x }", got[0].GetContent())
	})
}

func TestToChatTemplate(t *testing.T) {
	t.Run("text variants are not chat templates", func(t *testing.T) {
		_, err := ToChatTemplate(&catalog.Variant{TemplateType: catalog.TemplateTypeText, Text: "hi"})
		var unsupported *UnsupportedTemplateTypeError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "TEXT", unsupported.Type)
	})

	t.Run("unknown stored role", func(t *testing.T) {
		_, err := ToChatTemplate(&catalog.Variant{
			TemplateType: catalog.TemplateTypeChat,
			Messages:     []catalog.Message{{Role: "tool", Text: "x"}},
		})
		var unsupported *UnsupportedRoleError
		assert.True(t, errors.As(err, &unsupported))
	})

	t.Run("literal braces survive", func(t *testing.T) {
		chat, err := ToChatTemplate(&catalog.Variant{
			TemplateType: catalog.TemplateTypeChat,
			Messages: []catalog.Message{
				{Role: catalog.RoleSystem, Text: `Reply as {"answer": "{{answer}}"}`},
			},
		})
		require.NoError(t, err)

		msgs, err := chat.FormatMessages(map[string]any{"answer": "42"})
		require.NoError(t, err)
		assert.Equal(t, `Reply as {"answer": "42"}`, msgs[0].GetContent())
	})
}

func TestToTemplate(t *testing.T) {
	t.Run("text variant", func(t *testing.T) {
		tmpl, err := ToTemplate(&catalog.Variant{
			TemplateType: catalog.TemplateTypeText,
			Text:         "Summarize {{doc}}",
		})
		require.NoError(t, err)
		assert.Equal(t, prompt.KindPrompt, tmpl.Kind())

		out, err := tmpl.Format(map[string]any{"doc": "the report"})
		require.NoError(t, err)
		assert.Equal(t, "Summarize the report", out)
	})

	t.Run("chat variant", func(t *testing.T) {
		v, err := ToVariant(astronomyTemplate(t), catalog.ClaudeV35Sonnet)
		require.NoError(t, err)

		tmpl, err := ToTemplate(v)
		require.NoError(t, err)
		assert.Equal(t, prompt.KindChat, tmpl.Kind())
	})

	t.Run("unknown template type", func(t *testing.T) {
		_, err := ToTemplate(&catalog.Variant{TemplateType: "IMAGE"})
		assert.Error(t, err)
	})
}
