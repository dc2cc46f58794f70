package catalog

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const listPageSize = 100

// BedrockAPI is the subset of the bedrockagent client used here
type BedrockAPI interface {
	CreatePrompt(ctx context.Context, params *bedrockagent.CreatePromptInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreatePromptOutput, error)
	CreatePromptVersion(ctx context.Context, params *bedrockagent.CreatePromptVersionInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreatePromptVersionOutput, error)
	GetPrompt(ctx context.Context, params *bedrockagent.GetPromptInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetPromptOutput, error)
	DeletePrompt(ctx context.Context, params *bedrockagent.DeletePromptInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.DeletePromptOutput, error)
	ListPrompts(ctx context.Context, params *bedrockagent.ListPromptsInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.ListPromptsOutput, error)
}

// BedrockClient stores prompts in Amazon Bedrock Prompt Management.
//
// Bedrock keeps system text apart from the conversation, so system messages
// are always read back ahead of user and assistant messages.
type BedrockClient struct {
	api BedrockAPI
}

// NewBedrockClient loads the default AWS configuration for the region.
// Recognised options: "profile" (shared config profile) and "endpoint_url".
func NewBedrockClient(ctx context.Context, region string, options map[string]string) (*BedrockClient, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	if profile := options["profile"]; profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	var clientOpts []func(*bedrockagent.Options)
	if endpoint := options["endpoint_url"]; endpoint != "" {
		clientOpts = append(clientOpts, func(o *bedrockagent.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return NewBedrockClientFromAPI(bedrockagent.NewFromConfig(cfg, clientOpts...)), nil
}

// NewBedrockClientFromAPI wraps an existing bedrockagent client
func NewBedrockClientFromAPI(api BedrockAPI) *BedrockClient {
	return &BedrockClient{api: api}
}

func (c *BedrockClient) CreatePrompt(ctx context.Context, in CreatePromptInput) (*PromptRecord, error) {
	if err := checkSystemFirst(in.Variant); err != nil {
		return nil, err
	}

	out, err := c.api.CreatePrompt(ctx, &bedrockagent.CreatePromptInput{
		Name:                     aws.String(in.Name),
		Variants:                 []types.PromptVariant{toBedrockVariant(in.Variant)},
		DefaultVariant:           optional(in.DefaultVariant),
		Description:              optional(in.Description),
		Tags:                     in.Tags,
		CustomerEncryptionKeyArn: optional(in.CustomerEncryptionKeyArn),
		ClientToken:              aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, mapBedrockError(err, in.Name, DraftVersion, "failed to create prompt")
	}

	version, err := ParseVersion(aws.ToString(out.Version))
	if err != nil {
		return nil, err
	}

	return &PromptRecord{
		ID:        aws.ToString(out.Id),
		Arn:       aws.ToString(out.Arn),
		Name:      aws.ToString(out.Name),
		Version:   version,
		CreatedAt: aws.ToTime(out.CreatedAt),
	}, nil
}

func (c *BedrockClient) CreatePromptVersion(ctx context.Context, in CreateVersionInput) (*PromptRecord, error) {
	out, err := c.api.CreatePromptVersion(ctx, &bedrockagent.CreatePromptVersionInput{
		PromptIdentifier: aws.String(in.PromptID),
		Description:      optional(in.Description),
		Tags:             in.Tags,
		ClientToken:      aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, mapBedrockError(err, in.PromptID, DraftVersion, "failed to create prompt version")
	}

	version, err := ParseVersion(aws.ToString(out.Version))
	if err != nil {
		return nil, err
	}

	return &PromptRecord{
		ID:        aws.ToString(out.Id),
		Arn:       aws.ToString(out.Arn),
		Name:      aws.ToString(out.Name),
		Version:   version,
		CreatedAt: aws.ToTime(out.CreatedAt),
	}, nil
}

// GetPrompt resolves the name to an id through ListPrompts, then fetches it
func (c *BedrockClient) GetPrompt(ctx context.Context, name string, version int) (*Variant, error) {
	summaries, err := c.ListPrompts(ctx, ListInput{Name: name, MaxResults: 1})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, &NotFoundError{Prompt: name, Version: version}
	}

	return c.GetPromptByID(ctx, summaries[0].ID, version)
}

func (c *BedrockClient) GetPromptByID(ctx context.Context, id string, version int) (*Variant, error) {
	in := &bedrockagent.GetPromptInput{PromptIdentifier: aws.String(id)}
	if version != DraftVersion {
		in.PromptVersion = aws.String(FormatVersion(version))
	}

	out, err := c.api.GetPrompt(ctx, in)
	if err != nil {
		return nil, mapBedrockError(err, id, version, "failed to get prompt")
	}
	if len(out.Variants) == 0 {
		return nil, &NotFoundError{Prompt: id, Version: version}
	}

	selected := out.Variants[0]
	if def := aws.ToString(out.DefaultVariant); def != "" {
		for _, v := range out.Variants {
			if aws.ToString(v.Name) == def {
				selected = v
				break
			}
		}
	}

	return fromBedrockVariant(selected)
}

func (c *BedrockClient) DeletePrompt(ctx context.Context, id string, version int) (*DeleteResult, error) {
	in := &bedrockagent.DeletePromptInput{PromptIdentifier: aws.String(id)}
	if version != DraftVersion {
		in.PromptVersion = aws.String(FormatVersion(version))
	}

	out, err := c.api.DeletePrompt(ctx, in)
	if err != nil {
		return nil, mapBedrockError(err, id, version, "failed to delete prompt")
	}

	deleted, err := ParseVersion(aws.ToString(out.Version))
	if err != nil {
		return nil, err
	}

	return &DeleteResult{
		ID:      aws.ToString(out.Id),
		Version: deleted,
		Status:  "DELETED",
	}, nil
}

func (c *BedrockClient) ListPrompts(ctx context.Context, in ListInput) ([]PromptSummary, error) {
	params := &bedrockagent.ListPromptsInput{
		MaxResults:       aws.Int32(listPageSize),
		PromptIdentifier: optional(in.PromptID),
	}
	paginator := bedrockagent.NewListPromptsPaginator(c.api, params)

	var out []PromptSummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapBedrockError(err, in.PromptID, DraftVersion, "failed to list prompts")
		}

		for _, s := range page.PromptSummaries {
			if in.Name != "" && aws.ToString(s.Name) != in.Name {
				continue
			}
			version, err := ParseVersion(aws.ToString(s.Version))
			if err != nil {
				return nil, err
			}
			out = append(out, PromptSummary{
				ID:          aws.ToString(s.Id),
				Arn:         aws.ToString(s.Arn),
				Name:        aws.ToString(s.Name),
				Description: aws.ToString(s.Description),
				Version:     version,
				UpdatedAt:   aws.ToTime(s.UpdatedAt),
			})
			if in.MaxResults > 0 && len(out) >= in.MaxResults {
				return out, nil
			}
		}
	}

	return out, nil
}

func toBedrockVariant(v Variant) types.PromptVariant {
	inputs := make([]types.PromptInputVariable, 0, len(v.InputVariables))
	for _, name := range v.InputVariables {
		inputs = append(inputs, types.PromptInputVariable{Name: aws.String(name)})
	}

	name := v.Name
	if name == "" {
		name = DefaultVariantName
	}
	pv := types.PromptVariant{
		Name:    aws.String(name),
		ModelId: optional(string(v.Model)),
	}

	if v.TemplateType == TemplateTypeText {
		pv.TemplateType = types.PromptTemplateTypeText
		pv.TemplateConfiguration = &types.PromptTemplateConfigurationMemberText{
			Value: types.TextPromptTemplateConfiguration{
				Text:           aws.String(v.Text),
				InputVariables: inputs,
			},
		}
	} else {
		chat := types.ChatPromptTemplateConfiguration{InputVariables: inputs}
		for _, m := range v.Messages {
			if m.Role == RoleSystem {
				chat.System = append(chat.System, &types.SystemContentBlockMemberText{Value: m.Text})
				continue
			}
			chat.Messages = append(chat.Messages, types.Message{
				Role:    types.ConversationRole(m.Role),
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Text}},
			})
		}
		pv.TemplateType = types.PromptTemplateTypeChat
		pv.TemplateConfiguration = &types.PromptTemplateConfigurationMemberChat{Value: chat}
	}

	if v.Inference != nil {
		pv.InferenceConfiguration = &types.PromptInferenceConfigurationMemberText{
			Value: types.PromptModelInferenceConfiguration{
				MaxTokens:     v.Inference.MaxTokens,
				Temperature:   v.Inference.Temperature,
				TopP:          v.Inference.TopP,
				StopSequences: v.Inference.StopSequences,
			},
		}
	}

	return pv
}

// checkSystemFirst rejects chat variants Bedrock cannot store in order.
// System blocks are kept apart from the messages and always read back first.
func checkSystemFirst(v Variant) error {
	conversation := false
	for i, m := range v.Messages {
		if m.Role != RoleSystem {
			conversation = true
			continue
		}
		if conversation {
			return &MessageOrderError{Index: i}
		}
	}
	return nil
}

func fromBedrockVariant(pv types.PromptVariant) (*Variant, error) {
	v := &Variant{
		Name:  aws.ToString(pv.Name),
		Model: ModelID(aws.ToString(pv.ModelId)),
	}

	var inputs []types.PromptInputVariable
	switch cfg := pv.TemplateConfiguration.(type) {
	case *types.PromptTemplateConfigurationMemberChat:
		v.TemplateType = TemplateTypeChat
		for _, block := range cfg.Value.System {
			if text, ok := block.(*types.SystemContentBlockMemberText); ok {
				v.Messages = append(v.Messages, Message{Role: RoleSystem, Text: text.Value})
			}
		}
		for _, m := range cfg.Value.Messages {
			v.Messages = append(v.Messages, Message{Role: Role(m.Role), Text: contentText(m.Content)})
		}
		inputs = cfg.Value.InputVariables
	case *types.PromptTemplateConfigurationMemberText:
		v.TemplateType = TemplateTypeText
		v.Text = aws.ToString(cfg.Value.Text)
		inputs = cfg.Value.InputVariables
	default:
		return nil, errors.Errorf("unsupported template configuration %T in variant %s", pv.TemplateConfiguration, v.Name)
	}

	for _, in := range inputs {
		v.InputVariables = append(v.InputVariables, aws.ToString(in.Name))
	}

	if ic, ok := pv.InferenceConfiguration.(*types.PromptInferenceConfigurationMemberText); ok {
		v.Inference = &InferenceConfig{
			MaxTokens:     ic.Value.MaxTokens,
			Temperature:   ic.Value.Temperature,
			TopP:          ic.Value.TopP,
			StopSequences: ic.Value.StopSequences,
		}
	}

	return v, nil
}

func contentText(blocks []types.ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			parts = append(parts, text.Value)
		}
	}
	return strings.Join(parts, "")
}

func mapBedrockError(err error, prompt string, version int, msg string) error {
	var conflict *types.ConflictException
	if errors.As(err, &conflict) {
		return &AlreadyExistsError{Name: prompt}
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return &NotFoundError{Prompt: prompt, Version: version}
	}
	return errors.Wrap(err, msg)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
