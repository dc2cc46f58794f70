package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/converter"
	"github.com/killallgit/promptvault/pkg/logger"
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/killallgit/promptvault/pkg/prompt"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Show
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatText = "text"
)

// CreateRequest describes a prompt to create from a template file
type CreateRequest struct {
	TemplatePath string
	Name         string
	Model        string
	Options      []manager.RequestOption
}

// PromptsController runs prompt manager operations for the CLI and renders
// their results
type PromptsController struct {
	mgr    *manager.Manager
	loader *prompt.FileLoader
	color  bool
}

func NewPromptsController(mgr *manager.Manager, loader *prompt.FileLoader, color bool) *PromptsController {
	return &PromptsController{
		mgr:    mgr,
		loader: loader,
		color:  color,
	}
}

// Create loads the template file and stores it as a new prompt. The name
// defaults to the template's own name.
func (pc *PromptsController) Create(ctx context.Context, w io.Writer, req CreateRequest) error {
	spec, err := pc.loader.LoadSpec(req.TemplatePath)
	if err != nil {
		return err
	}

	tmpl, err := spec.Build()
	if err != nil {
		return fmt.Errorf("failed to build template %s: %w", req.TemplatePath, err)
	}

	name := req.Name
	if name == "" {
		name = spec.Name
	}

	model, err := catalog.ParseModel(req.Model)
	if err != nil {
		// not an alias or a known id; the converter rejects it
		model = catalog.ModelID(req.Model)
	}

	record, err := pc.mgr.CreatePrompt(ctx, tmpl, name, model, req.Options...)
	if err != nil {
		return fmt.Errorf("failed to create prompt %s: %w", name, err)
	}

	fmt.Fprintf(w, "Created prompt %s\n", record.Name)
	fmt.Fprintf(w, "  id:      %s\n", record.ID)
	if record.Arn != "" {
		fmt.Fprintf(w, "  arn:     %s\n", record.Arn)
	}
	fmt.Fprintf(w, "  version: %s\n", catalog.FormatVersion(record.Version))
	return nil
}

// Version snapshots the held prompt
func (pc *PromptsController) Version(ctx context.Context, w io.Writer, opts ...manager.RequestOption) error {
	record, err := pc.mgr.CreatePromptVersion(ctx, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Created version %s of prompt %s\n", catalog.FormatVersion(record.Version), record.ID)
	return nil
}

// Show prints a stored prompt as yaml, json or text. Text output is the
// template rebuilt from the catalog, in local roles and placeholder notation.
// Every format fails when the stored variant does not convert back.
func (pc *PromptsController) Show(ctx context.Context, w io.Writer, name string, version int, format string) error {
	if format == FormatText {
		tmpl, err := pc.mgr.GetPrompt(ctx, name, version)
		if err != nil {
			return err
		}
		text, err := renderText(tmpl)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s (version %s)\n%s", name, catalog.FormatVersion(version), text)
		return nil
	}

	variant, err := pc.mgr.GetVariant(ctx, name, version)
	if err != nil {
		return err
	}
	if _, err := converter.ToTemplate(variant); err != nil {
		return fmt.Errorf("prompt %s is not a valid template: %w", name, err)
	}

	switch format {
	case FormatYAML, "":
		data, err := yaml.Marshal(variant)
		if err != nil {
			return fmt.Errorf("failed to encode prompt: %w", err)
		}
		fmt.Fprint(w, highlight(string(data), "yaml", pc.color))
	case FormatJSON:
		data, err := json.MarshalIndent(variant, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode prompt: %w", err)
		}
		fmt.Fprintln(w, highlight(string(data), "json", pc.color))
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}

func renderText(tmpl prompt.Template) (string, error) {
	var b strings.Builder
	switch t := tmpl.(type) {
	case *prompt.PromptTemplate:
		b.WriteString(t.Text())
		b.WriteString("\n")
	case *prompt.ChatPromptTemplate:
		for _, msg := range t.Messages() {
			role, text, err := converter.MessageSource(msg)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "[%s]\n%s\n\n", role, text)
		}
	default:
		return "", fmt.Errorf("cannot render %s template", tmpl.Kind())
	}
	return b.String(), nil
}

// Delete removes the held prompt, or only one of its versions when version
// is not the draft
func (pc *PromptsController) Delete(ctx context.Context, w io.Writer, version int) error {
	var (
		result *catalog.DeleteResult
		err    error
	)
	if version == catalog.DraftVersion {
		result, err = pc.mgr.DeletePrompt(ctx)
	} else {
		result, err = pc.mgr.DeletePromptVersion(ctx, version)
	}
	if err != nil {
		return err
	}

	if version == catalog.DraftVersion {
		fmt.Fprintf(w, "Deleted prompt %s\n", result.ID)
	} else {
		fmt.Fprintf(w, "Deleted version %d of prompt %s\n", version, result.ID)
	}
	return nil
}

// List prints the catalog's prompts as a table
func (pc *PromptsController) List(ctx context.Context, w io.Writer, in catalog.ListInput) error {
	summaries, err := pc.mgr.ListPrompts(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No prompts found")
		return nil
	}

	held, _ := pc.mgr.Identity()
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		marker := ""
		if s.ID == held.ID {
			marker = "*"
		}
		updated := ""
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{marker, s.Name, s.ID, catalog.FormatVersion(s.Version), updated, s.Description})
	}

	logger.Debug("Rendering %d prompt summaries", len(rows))
	fmt.Fprintln(w, renderTable([]string{"", "NAME", "ID", "VERSION", "UPDATED", "DESCRIPTION"}, rows))
	return nil
}

// Status prints the prompt held by the manager
func (pc *PromptsController) Status(w io.Writer) {
	id, ok := pc.mgr.Identity()
	if !ok {
		fmt.Fprintln(w, "No active prompt")
		return
	}

	fmt.Fprintf(w, "Active prompt %s\n", id.Name)
	fmt.Fprintf(w, "  id:      %s\n", id.ID)
	fmt.Fprintf(w, "  version: %s\n", catalog.FormatVersion(id.Version))
}
