package catalog

import "fmt"

// AlreadyExistsError is returned when a prompt name is already taken
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("prompt %q already exists", e.Name)
}

// NotFoundError is returned when no prompt matches the name/id and version
type NotFoundError struct {
	Prompt  string
	Version int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt %q version %s not found", e.Prompt, FormatVersion(e.Version))
}

// InvalidVersionError is returned for version strings that are neither a
// positive number nor DRAFT
type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid prompt version %q", e.Version)
}

// MessageOrderError is returned by catalogs that keep system messages apart
// from the conversation when a system message follows a user or assistant
// message. Storing it would reorder the conversation.
type MessageOrderError struct {
	Index int
}

func (e *MessageOrderError) Error() string {
	return fmt.Sprintf("system message %d follows a conversation message; this catalog only stores system messages first", e.Index)
}
