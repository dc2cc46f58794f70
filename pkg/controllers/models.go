package controllers

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/killallgit/promptvault/pkg/catalog"
)

type ModelsController struct {
	models func() []catalog.ModelAlias
}

func NewModelsController() *ModelsController {
	return &ModelsController{
		models: catalog.Models,
	}
}

func (mc *ModelsController) ListModels(writer io.Writer) error {
	models := mc.models()
	if len(models) == 0 {
		fmt.Fprintln(writer, "No models found")
		return nil
	}

	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL ID")

	for _, m := range models {
		fmt.Fprintf(w, "%s\t%s\n", m.Alias, m.ID)
	}

	return w.Flush()
}
