// Package catalog talks to a managed prompt catalog. Two backends are
// provided: Amazon Bedrock Prompt Management and a local SQLite store with
// the same versioning rules.
package catalog

import (
	"context"
	"fmt"
)

// Client is the set of catalog operations the prompt manager depends on.
// Implementations do their own retries and timeouts.
type Client interface {
	// CreatePrompt stores a new prompt with one variant as its draft
	CreatePrompt(ctx context.Context, in CreatePromptInput) (*PromptRecord, error)

	// CreatePromptVersion snapshots the draft into the next numbered version
	CreatePromptVersion(ctx context.Context, in CreateVersionInput) (*PromptRecord, error)

	// GetPrompt fetches the first variant of a prompt by name and version
	GetPrompt(ctx context.Context, name string, version int) (*Variant, error)

	// GetPromptByID fetches the first variant of a prompt by id and version
	GetPromptByID(ctx context.Context, id string, version int) (*Variant, error)

	// DeletePrompt removes a prompt. Version DraftVersion removes the prompt
	// and all of its versions; any other version removes only that snapshot.
	DeletePrompt(ctx context.Context, id string, version int) (*DeleteResult, error)

	// ListPrompts lists prompt summaries
	ListPrompts(ctx context.Context, in ListInput) ([]PromptSummary, error)
}

const (
	BackendBedrock = "bedrock"
	BackendSQLite  = "sqlite"
)

// Config selects and configures a backend. RegionName is used by Bedrock;
// Options are passed to the backend untouched.
type Config struct {
	Backend    string
	RegionName string
	Options    map[string]string
}

// Open builds a client for the configured backend
func Open(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Backend {
	case BackendBedrock, "":
		client, err := NewBedrockClient(ctx, cfg.RegionName, cfg.Options)
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendSQLite:
		client, err := OpenSQLite(cfg.Options["path"])
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend: %s", cfg.Backend)
	}
}
