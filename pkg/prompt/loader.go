package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/prompts"
	"gopkg.in/yaml.v3"
)

// FileLoader loads templates from JSON, YAML or plain text files
type FileLoader struct {
	baseDir string
}

// NewFileLoader creates a new file-based template loader
func NewFileLoader(baseDir string) *FileLoader {
	return &FileLoader{baseDir: baseDir}
}

// Load loads a template by name/path. Plain text files become f-string
// prompt templates; structured files become chat, few-shot chat or prompt
// templates depending on which fields are set.
func (f *FileLoader) Load(name string) (Template, error) {
	path := f.resolvePath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	if !isStructured(path) {
		return NewPromptTemplate(string(data), nil)
	}

	spec, err := parseSpec(data, path)
	if err != nil {
		return nil, err
	}

	return spec.Build()
}

// LoadSpec reads a structured template file without building it, so callers
// can use its name. Plain text files yield a spec named after the file.
func (f *FileLoader) LoadSpec(name string) (TemplateSpec, error) {
	path := f.resolvePath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		return TemplateSpec{}, fmt.Errorf("failed to read template file: %w", err)
	}

	if !isStructured(path) {
		base := filepath.Base(path)
		return TemplateSpec{
			Name:     strings.TrimSuffix(base, filepath.Ext(base)),
			Template: string(data),
		}, nil
	}

	spec, err := parseSpec(data, path)
	if err != nil {
		return spec, err
	}
	if spec.Name == "" {
		base := filepath.Base(path)
		spec.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return spec, nil
}

// LoadChat loads a chat template by name/path
func (f *FileLoader) LoadChat(name string) (ChatTemplate, error) {
	path := f.resolvePath(name)

	if !isStructured(path) {
		return nil, fmt.Errorf("chat templates must be in JSON or YAML format")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	spec, err := parseSpec(data, path)
	if err != nil {
		return nil, err
	}
	if len(spec.Messages) == 0 {
		return nil, fmt.Errorf("template %s has no messages", path)
	}

	t, err := spec.Build()
	if err != nil {
		return nil, err
	}
	return t.(ChatTemplate), nil
}

// resolvePath resolves the template path
func (f *FileLoader) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.baseDir, name)
}

// StringLoader loads templates registered in memory
type StringLoader struct {
	templates map[string]string
	chats     map[string][]MessageDefinition
}

// NewStringLoader creates a new string-based template loader
func NewStringLoader() *StringLoader {
	return &StringLoader{
		templates: make(map[string]string),
		chats:     make(map[string][]MessageDefinition),
	}
}

// AddTemplate adds an f-string template
func (s *StringLoader) AddTemplate(name string, template string) {
	s.templates[name] = template
}

// AddChatTemplate adds a chat template
func (s *StringLoader) AddChatTemplate(name string, messages []MessageDefinition) {
	s.chats[name] = messages
}

// Load loads a template by name, preferring chat templates
func (s *StringLoader) Load(name string) (Template, error) {
	if _, ok := s.chats[name]; ok {
		return s.LoadChat(name)
	}

	template, exists := s.templates[name]
	if !exists {
		return nil, fmt.Errorf("template %s not found", name)
	}

	return NewPromptTemplate(template, nil)
}

// LoadChat loads a chat template by name
func (s *StringLoader) LoadChat(name string) (ChatTemplate, error) {
	messages, exists := s.chats[name]
	if !exists {
		return nil, fmt.Errorf("chat template %s not found", name)
	}

	return NewChatTemplateFromMessages(messages)
}

// TemplateSpec defines the structure of a template file
type TemplateSpec struct {
	Name            string                 `json:"name" yaml:"name"`
	Template        string                 `json:"template,omitempty" yaml:"template,omitempty"`
	Format          prompts.TemplateFormat `json:"format,omitempty" yaml:"format,omitempty"`
	Messages        []MessageDefinition    `json:"messages,omitempty" yaml:"messages,omitempty"`
	ExampleMessages []MessageDefinition    `json:"example_messages,omitempty" yaml:"example_messages,omitempty"`
	Examples        []Example              `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Build creates the template described by the spec
func (s TemplateSpec) Build() (Template, error) {
	if len(s.Messages) == 0 {
		if s.Template == "" {
			return nil, fmt.Errorf("template %q has neither messages nor template text", s.Name)
		}
		format := s.Format
		if format == "" {
			format = prompts.TemplateFormatFString
		}
		return NewPromptTemplateWithFormat(s.Template, nil, format)
	}

	chat, err := NewChatTemplateFromMessages(s.Messages)
	if err != nil {
		return nil, err
	}
	if len(s.Examples) == 0 {
		return chat, nil
	}

	examplePrompt, err := NewChatTemplateFromMessages(s.ExampleMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to create example prompt: %w", err)
	}
	return NewFewShotChatTemplate(examplePrompt, s.Examples, chat), nil
}

func isStructured(path string) bool {
	return strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func parseSpec(data []byte, path string) (TemplateSpec, error) {
	var spec TemplateSpec

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &spec); err != nil {
			return spec, fmt.Errorf("failed to parse JSON template: %w", err)
		}
		return spec, nil
	}

	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("failed to parse YAML template: %w", err)
	}
	return spec, nil
}
