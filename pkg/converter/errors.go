package converter

import (
	"fmt"

	"github.com/killallgit/promptvault/pkg/placeholder"
)

// MalformedTemplateError reports unparseable placeholder syntax
type MalformedTemplateError = placeholder.MalformedTemplateError

// UnsupportedRoleError reports a message role with no catalog counterpart
type UnsupportedRoleError struct {
	Role string
}

func (e *UnsupportedRoleError) Error() string {
	return fmt.Sprintf("unsupported message role: %s", e.Role)
}

// UnsupportedTemplateTypeError reports a template shape or format the
// converter refuses to handle
type UnsupportedTemplateTypeError struct {
	Type string
}

func (e *UnsupportedTemplateTypeError) Error() string {
	return fmt.Sprintf("unsupported template type: %s", e.Type)
}

// UnsupportedModelError reports a model id outside the supported set
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model: %s", e.Model)
}
