package converter

import (
	"errors"
	"fmt"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/placeholder"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/tmc/langchaingo/prompts"
)

// ConvertMessage turns one langchaingo message template into a catalog
// message and the variables its text references.
func ConvertMessage(msg prompts.MessageFormatter) (catalog.Message, []string, error) {
	role, pt, err := unwrapMessage(msg)
	if err != nil {
		return catalog.Message{}, nil, err
	}

	remoteRole, err := toRemoteRole(role)
	if err != nil {
		return catalog.Message{}, nil, err
	}

	text, vars, err := ToRemote(pt.Template, pt.TemplateFormat)
	if err != nil {
		return catalog.Message{}, nil, err
	}

	return catalog.Message{Role: remoteRole, Text: text}, vars, nil
}

// RevertMessage rebuilds an f-string message template from a catalog message
func RevertMessage(msg catalog.Message) (prompts.MessageFormatter, error) {
	role, err := toLocalRole(msg.Role)
	if err != nil {
		return nil, err
	}

	return prompt.NewMessageTemplate(prompt.MessageDefinition{
		Role:      string(role),
		Template:  ToLocal(msg.Text),
		Variables: placeholder.RemoteVariables(msg.Text),
		Format:    prompts.TemplateFormatFString,
	})
}

// MessageSource returns the local role and raw template text of a message
// template
func MessageSource(msg prompts.MessageFormatter) (prompt.Role, string, error) {
	role, pt, err := unwrapMessage(msg)
	if err != nil {
		return "", "", err
	}
	return role, pt.Template, nil
}

// ToRemote translates local placeholder notation into catalog notation
func ToRemote(text string, format prompts.TemplateFormat) (string, []string, error) {
	remote, vars, err := placeholder.ToRemote(text, format)
	if err != nil {
		var unsupported *placeholder.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return "", nil, &UnsupportedTemplateTypeError{Type: string(unsupported.Format)}
		}
		return "", nil, err
	}
	return remote, vars, nil
}

// ToLocal translates catalog notation into f-string notation
func ToLocal(remote string) string {
	return placeholder.ToLocal(remote)
}

func unwrapMessage(msg prompts.MessageFormatter) (prompt.Role, prompts.PromptTemplate, error) {
	switch m := msg.(type) {
	case prompts.SystemMessagePromptTemplate:
		return prompt.RoleSystem, m.Prompt, nil
	case *prompts.SystemMessagePromptTemplate:
		return prompt.RoleSystem, m.Prompt, nil
	case prompts.HumanMessagePromptTemplate:
		return prompt.RoleHuman, m.Prompt, nil
	case *prompts.HumanMessagePromptTemplate:
		return prompt.RoleHuman, m.Prompt, nil
	case prompts.AIMessagePromptTemplate:
		return prompt.RoleAI, m.Prompt, nil
	case *prompts.AIMessagePromptTemplate:
		return prompt.RoleAI, m.Prompt, nil
	case prompts.GenericMessagePromptTemplate:
		return genericRole(m.Role, m.Prompt)
	case *prompts.GenericMessagePromptTemplate:
		return genericRole(m.Role, m.Prompt)
	default:
		return "", prompts.PromptTemplate{}, &UnsupportedRoleError{Role: fmt.Sprintf("%T", msg)}
	}
}

func genericRole(name string, pt prompts.PromptTemplate) (prompt.Role, prompts.PromptTemplate, error) {
	role, err := prompt.ParseRole(name)
	if err != nil {
		return "", pt, &UnsupportedRoleError{Role: name}
	}
	return role, pt, nil
}

func toRemoteRole(role prompt.Role) (catalog.Role, error) {
	switch role {
	case prompt.RoleSystem:
		return catalog.RoleSystem, nil
	case prompt.RoleHuman:
		return catalog.RoleUser, nil
	case prompt.RoleAI:
		return catalog.RoleAssistant, nil
	default:
		return "", &UnsupportedRoleError{Role: string(role)}
	}
}

func toLocalRole(role catalog.Role) (prompt.Role, error) {
	switch role {
	case catalog.RoleSystem:
		return prompt.RoleSystem, nil
	case catalog.RoleUser:
		return prompt.RoleHuman, nil
	case catalog.RoleAssistant:
		return prompt.RoleAI, nil
	default:
		return "", &UnsupportedRoleError{Role: string(role)}
	}
}
