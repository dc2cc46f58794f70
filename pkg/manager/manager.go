// Package manager creates, versions, fetches and deletes chat templates in a
// prompt catalog while tracking the prompt created in the current session.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/converter"
	"github.com/killallgit/promptvault/pkg/logger"
	"github.com/killallgit/promptvault/pkg/prompt"
)

// ErrNoActivePrompt is returned by operations that act on the held prompt
// when no prompt has been created (or it was deleted).
var ErrNoActivePrompt = errors.New("no active prompt")

// Identity names the prompt a Manager currently holds
type Identity struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Version int    `yaml:"version"`
}

// Manager is a single-owner state machine over one Identity. It is not safe
// for concurrent use; use one Manager per goroutine.
type Manager struct {
	client      catalog.Client
	identity    *Identity
	variantName string
}

// Option configures a Manager
type Option func(*Manager)

// WithDefaultVariantName sets the variant name used when a create request
// does not name one
func WithDefaultVariantName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.variantName = name
		}
	}
}

// New creates a Manager in the empty state
func New(client catalog.Client, opts ...Option) *Manager {
	m := &Manager{
		client:      client,
		variantName: catalog.DefaultVariantName,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig opens the configured catalog backend and wraps it
func NewFromConfig(ctx context.Context, cfg catalog.Config, opts ...Option) (*Manager, error) {
	client, err := catalog.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return New(client, opts...), nil
}

// Close releases the catalog client when it holds resources, such as the
// SQLite database handle. The identity is kept.
func (m *Manager) Close() error {
	if closer, ok := m.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Identity returns the held prompt, if any
func (m *Manager) Identity() (Identity, bool) {
	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

// Restore puts the manager back into the created state for id, e.g. from a
// previous CLI invocation
func (m *Manager) Restore(id Identity) {
	m.identity = &id
}

// CreatePrompt converts tmpl and stores it as a new prompt. On success the
// new prompt replaces any prompt held before; the old one is left untouched
// in the catalog. On failure the held prompt does not change.
func (m *Manager) CreatePrompt(ctx context.Context, tmpl prompt.Template, name string, model catalog.ModelID, opts ...RequestOption) (*catalog.PromptRecord, error) {
	o := m.requestOptions(opts)

	variant, err := converter.ToVariant(tmpl, model,
		converter.WithVariantName(o.variantName),
		converter.WithInference(o.inference),
	)
	if err != nil {
		logger.Error("Error converting prompt %s: %v", name, err)
		return nil, err
	}

	record, err := m.client.CreatePrompt(ctx, catalog.CreatePromptInput{
		Name:                     name,
		Description:              o.description,
		Variant:                  *variant,
		DefaultVariant:           o.defaultVariant,
		Tags:                     o.tags,
		CustomerEncryptionKeyArn: o.encryptionKeyArn,
	})
	if err != nil {
		logger.Error("Error creating prompt %s: %v", name, err)
		return nil, err
	}

	if m.identity != nil {
		logger.Info("Replacing active prompt: id=%s, name=%s", m.identity.ID, m.identity.Name)
	}

	held := Identity{Name: record.Name, ID: record.ID, Version: record.Version}
	if held.Name == "" {
		held.Name = name
	}
	m.identity = &held

	logger.Info("Prompt created: id=%s, arn=%s, name=%s, version=%s",
		record.ID, record.Arn, held.Name, catalog.FormatVersion(record.Version))
	return record, nil
}

// CreatePromptVersion snapshots the held prompt. Only WithDescription and
// WithTags apply.
func (m *Manager) CreatePromptVersion(ctx context.Context, opts ...RequestOption) (*catalog.PromptRecord, error) {
	if m.identity == nil {
		return nil, fmt.Errorf("create prompt version: %w", ErrNoActivePrompt)
	}
	o := m.requestOptions(opts)

	record, err := m.client.CreatePromptVersion(ctx, catalog.CreateVersionInput{
		PromptID:    m.identity.ID,
		Description: o.description,
		Tags:        o.tags,
	})
	if err != nil {
		logger.Error("Error creating prompt version for %s: %v", m.identity.ID, err)
		return nil, err
	}

	m.identity.Version = record.Version
	logger.Info("Prompt version created: id=%s, arn=%s, name=%s, version=%d",
		record.ID, record.Arn, m.identity.Name, record.Version)
	return record, nil
}

// GetPrompt fetches a prompt by name and version and rebuilds its template.
// It works in any state and never consults the held prompt.
func (m *Manager) GetPrompt(ctx context.Context, name string, version int) (prompt.Template, error) {
	variant, err := m.client.GetPrompt(ctx, name, version)
	if err != nil {
		logger.Error("Error getting prompt %s version %s: %v", name, catalog.FormatVersion(version), err)
		return nil, err
	}

	logger.Info("Prompt fetched: name=%s, version=%s, variant=%s", name, catalog.FormatVersion(version), variant.Name)
	return converter.ToTemplate(variant)
}

// GetChatPrompt is GetPrompt for callers that need a chat template
func (m *Manager) GetChatPrompt(ctx context.Context, name string, version int) (*prompt.ChatPromptTemplate, error) {
	variant, err := m.client.GetPrompt(ctx, name, version)
	if err != nil {
		logger.Error("Error getting prompt %s version %s: %v", name, catalog.FormatVersion(version), err)
		return nil, err
	}

	logger.Info("Prompt fetched: name=%s, version=%s, variant=%s", name, catalog.FormatVersion(version), variant.Name)
	return converter.ToChatTemplate(variant)
}

// GetPromptByID fetches a prompt by its catalog id
func (m *Manager) GetPromptByID(ctx context.Context, id string, version int) (prompt.Template, error) {
	variant, err := m.client.GetPromptByID(ctx, id, version)
	if err != nil {
		logger.Error("Error getting prompt id %s version %s: %v", id, catalog.FormatVersion(version), err)
		return nil, err
	}

	logger.Info("Prompt fetched: id=%s, version=%s, variant=%s", id, catalog.FormatVersion(version), variant.Name)
	return converter.ToTemplate(variant)
}

// GetVariant fetches the raw catalog variant without converting it
func (m *Manager) GetVariant(ctx context.Context, name string, version int) (*catalog.Variant, error) {
	return m.client.GetPrompt(ctx, name, version)
}

// DeletePrompt deletes the held prompt with all its versions and returns the
// manager to the empty state. If the catalog call fails the held prompt is kept.
func (m *Manager) DeletePrompt(ctx context.Context) (*catalog.DeleteResult, error) {
	if m.identity == nil {
		return nil, fmt.Errorf("delete prompt: %w", ErrNoActivePrompt)
	}

	result, err := m.client.DeletePrompt(ctx, m.identity.ID, catalog.DraftVersion)
	if err != nil {
		logger.Error("Error deleting prompt %s: %v", m.identity.ID, err)
		return nil, err
	}

	logger.Info("Prompt deleted: id=%s, name=%s", m.identity.ID, m.identity.Name)
	m.identity = nil
	return result, nil
}

// DeletePromptVersion deletes one numbered version of the held prompt. The
// prompt stays active.
func (m *Manager) DeletePromptVersion(ctx context.Context, version int) (*catalog.DeleteResult, error) {
	if m.identity == nil {
		return nil, fmt.Errorf("delete prompt version: %w", ErrNoActivePrompt)
	}
	if version == catalog.DraftVersion {
		return nil, fmt.Errorf("delete prompt version: the draft can only be removed with DeletePrompt")
	}

	result, err := m.client.DeletePrompt(ctx, m.identity.ID, version)
	if err != nil {
		logger.Error("Error deleting prompt %s version %d: %v", m.identity.ID, version, err)
		return nil, err
	}

	logger.Info("Prompt version deleted: id=%s, version=%d", m.identity.ID, version)
	return result, nil
}

// ListPrompts lists prompt summaries in the catalog
func (m *Manager) ListPrompts(ctx context.Context, in catalog.ListInput) ([]catalog.PromptSummary, error) {
	summaries, err := m.client.ListPrompts(ctx, in)
	if err != nil {
		logger.Error("Error listing prompts: %v", err)
		return nil, err
	}

	logger.Debug("Listed %d prompts", len(summaries))
	return summaries, nil
}
