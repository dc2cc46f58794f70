// Package placeholder rewrites variable placeholders between langchaingo
// template notation and the prompt catalog's {{name}} notation.
package placeholder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// MalformedTemplateError reports placeholder syntax that cannot be parsed.
// Offset is the byte offset of the offending delimiter, or -1 when the
// problem is not tied to one position.
type MalformedTemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("malformed template: %s", e.Reason)
	}
	return fmt.Sprintf("malformed template at offset %d: %s", e.Offset, e.Reason)
}

// UnsupportedFormatError is returned for template formats with no placeholder
// mapping to the catalog notation.
type UnsupportedFormatError struct {
	Format prompts.TemplateFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported template format: %s", e.Format)
}

var braceEscaper = strings.NewReplacer("{", "{{", "}", "}}")

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokVariable
)

type token struct {
	kind tokenKind
	text string
}

// ToRemote rewrites a local template into catalog notation and returns the
// variables it references, deduplicated in first-occurrence order.
// An empty format is treated as f-string.
func ToRemote(text string, format prompts.TemplateFormat) (string, []string, error) {
	tokens, err := lexLocal(text, format)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.kind == tokVariable {
			b.WriteString("{{")
			b.WriteString(tok.text)
			b.WriteString("}}")
			continue
		}
		b.WriteString(tok.text)
	}
	remote := b.String()
	vars := variables(tokens)

	// Literal braces next to each other can spell a catalog placeholder.
	// Every occurrence must survive, not just every name.
	if !slices.Equal(occurrences(lexRemote(remote)), occurrences(tokens)) {
		return "", nil, &MalformedTemplateError{
			Template: text,
			Offset:   -1,
			Reason:   "literal braces collide with catalog placeholder syntax",
		}
	}

	return remote, vars, nil
}

// ToLocal rewrites catalog text into f-string notation. Any brace that is not
// part of a {{name}} placeholder is kept as a literal brace.
func ToLocal(remote string) string {
	var b strings.Builder
	for _, tok := range lexRemote(remote) {
		if tok.kind == tokVariable {
			b.WriteString("{")
			b.WriteString(tok.text)
			b.WriteString("}")
			continue
		}
		b.WriteString(braceEscaper.Replace(tok.text))
	}
	return b.String()
}

// Variables returns the variables referenced by a local template.
func Variables(text string, format prompts.TemplateFormat) ([]string, error) {
	tokens, err := lexLocal(text, format)
	if err != nil {
		return nil, err
	}
	return variables(tokens), nil
}

// RemoteVariables returns the variables referenced by catalog text.
func RemoteVariables(remote string) []string {
	return variables(lexRemote(remote))
}

func occurrences(tokens []token) []string {
	var names []string
	for _, tok := range tokens {
		if tok.kind == tokVariable {
			names = append(names, tok.text)
		}
	}
	return names
}

func variables(tokens []token) []string {
	seen := make(map[string]bool)
	vars := make([]string, 0)
	for _, tok := range tokens {
		if tok.kind != tokVariable || seen[tok.text] {
			continue
		}
		seen[tok.text] = true
		vars = append(vars, tok.text)
	}
	return vars
}

func lexLocal(text string, format prompts.TemplateFormat) ([]token, error) {
	switch format {
	case "", prompts.TemplateFormatFString:
		return lexFString(text)
	case prompts.TemplateFormatGoTemplate:
		return lexGoTemplate(text)
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// lexFString follows python str.format rules restricted to bare names:
// "{{" and "}}" are escaped braces, "{name}" is a variable.
func lexFString(text string) ([]token, error) {
	var tokens []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &MalformedTemplateError{Template: text, Offset: i, Reason: "unclosed '{'"}
			}
			name := text[i+1 : i+1+end]
			if !validName(name) {
				return nil, &MalformedTemplateError{Template: text, Offset: i, Reason: fmt.Sprintf("invalid placeholder %q", name)}
			}
			flush()
			tokens = append(tokens, token{kind: tokVariable, text: name})
			i += end + 2
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, &MalformedTemplateError{Template: text, Offset: i, Reason: "unmatched '}'"}
		default:
			lit.WriteByte(text[i])
			i++
		}
	}
	flush()

	return tokens, nil
}

// lexGoTemplate only understands field actions of the form {{.name}}.
// Anything else (pipelines, conditionals, ranges) has no catalog equivalent.
func lexGoTemplate(text string) ([]token, error) {
	var tokens []token
	rest := text
	offset := 0

	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			return nil, &MalformedTemplateError{Template: text, Offset: offset + start, Reason: "unclosed '{{'"}
		}
		action := strings.TrimSpace(rest[start+2 : start+2+end])
		if !strings.HasPrefix(action, ".") || !validName(action[1:]) {
			return nil, &MalformedTemplateError{Template: text, Offset: offset + start, Reason: fmt.Sprintf("unsupported template action %q", action)}
		}

		if start > 0 {
			tokens = append(tokens, token{kind: tokLiteral, text: rest[:start]})
		}
		tokens = append(tokens, token{kind: tokVariable, text: action[1:]})

		consumed := start + 2 + end + 2
		rest = rest[consumed:]
		offset += consumed
	}
	if rest != "" {
		tokens = append(tokens, token{kind: tokLiteral, text: rest})
	}

	return tokens, nil
}

func lexRemote(text string) []token {
	var tokens []token
	var lit strings.Builder

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "{{") {
			if end := strings.Index(text[i+2:], "}}"); end >= 0 {
				name := strings.TrimSpace(text[i+2 : i+2+end])
				if validName(name) {
					if lit.Len() > 0 {
						tokens = append(tokens, token{kind: tokLiteral, text: lit.String()})
						lit.Reset()
					}
					tokens = append(tokens, token{kind: tokVariable, text: name})
					i += end + 4
					continue
				}
			}
		}
		lit.WriteByte(text[i])
		i++
	}
	if lit.Len() > 0 {
		tokens = append(tokens, token{kind: tokLiteral, text: lit.String()})
	}

	return tokens
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
