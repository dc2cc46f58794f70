package catalog

import (
	"fmt"
	"sort"
)

// ModelID is a chat-capable foundation model the catalog can bind a variant to
type ModelID string

const (
	ClaudeV3Haiku     ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	ClaudeV3Sonnet    ModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	ClaudeV3Opus      ModelID = "anthropic.claude-3-opus-20240229-v1:0"
	ClaudeV35Sonnet   ModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	ClaudeV35SonnetV2 ModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	ClaudeV35Haiku    ModelID = "anthropic.claude-3-5-haiku-20241022-v1:0"
	Llama31_8B        ModelID = "meta.llama3-1-8b-instruct-v1:0"
	Llama31_70B       ModelID = "meta.llama3-1-70b-instruct-v1:0"
	MistralLarge      ModelID = "mistral.mistral-large-2407-v1:0"
	NovaLite          ModelID = "amazon.nova-lite-v1:0"
	NovaPro           ModelID = "amazon.nova-pro-v1:0"
	CommandRPlus      ModelID = "cohere.command-r-plus-v1:0"
)

var modelAliases = map[string]ModelID{
	"CLAUDE_V3_HAIKU":       ClaudeV3Haiku,
	"CLAUDE_V3_SONNET":      ClaudeV3Sonnet,
	"CLAUDE_V3_OPUS":        ClaudeV3Opus,
	"CLAUDE_V3_5_SONNET":    ClaudeV35Sonnet,
	"CLAUDE_V3_5_SONNET_V2": ClaudeV35SonnetV2,
	"CLAUDE_V3_5_HAIKU":     ClaudeV35Haiku,
	"LLAMA_3_1_8B":          Llama31_8B,
	"LLAMA_3_1_70B":         Llama31_70B,
	"MISTRAL_LARGE":         MistralLarge,
	"NOVA_LITE":             NovaLite,
	"NOVA_PRO":              NovaPro,
	"COMMAND_R_PLUS":        CommandRPlus,
}

// Valid reports whether the id is in the supported set
func (m ModelID) Valid() bool {
	switch m {
	case ClaudeV3Haiku, ClaudeV3Sonnet, ClaudeV3Opus,
		ClaudeV35Sonnet, ClaudeV35SonnetV2, ClaudeV35Haiku,
		Llama31_8B, Llama31_70B, MistralLarge,
		NovaLite, NovaPro, CommandRPlus:
		return true
	}
	return false
}

// ParseModel accepts a model id or its alias (e.g. CLAUDE_V3_5_SONNET)
func ParseModel(s string) (ModelID, error) {
	if m, ok := modelAliases[s]; ok {
		return m, nil
	}
	if m := ModelID(s); m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("unsupported model: %s", s)
}

// ModelAlias pairs a model id with its alias
type ModelAlias struct {
	Alias string
	ID    ModelID
}

// Models lists the supported models sorted by alias
func Models() []ModelAlias {
	out := make([]ModelAlias, 0, len(modelAliases))
	for alias, id := range modelAliases {
		out = append(out, ModelAlias{Alias: alias, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
