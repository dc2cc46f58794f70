package controllers_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/controllers"
	"github.com/killallgit/promptvault/pkg/converter"
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/killallgit/promptvault/pkg/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const astronomyYAML = `
name: astronomical_questions
messages:
  - role: system
    template: "You are an astronomer. Answer questions about {topic}."
  - role: human
    template: "{user_input}"
`

var _ = Describe("ModelsController", func() {
	It("lists aliases and ids", func() {
		buffer := &bytes.Buffer{}
		Expect(controllers.NewModelsController().ListModels(buffer)).To(Succeed())

		output := buffer.String()
		Expect(output).To(ContainSubstring("ALIAS"))
		Expect(output).To(ContainSubstring("CLAUDE_V3_5_SONNET"))
		Expect(output).To(ContainSubstring(string(catalog.ClaudeV35Sonnet)))
	})
})

var _ = Describe("PromptsController", func() {
	var (
		ctx        context.Context
		fake       *testutil.FakeCatalog
		mgr        *manager.Manager
		controller *controllers.PromptsController
		buffer     *bytes.Buffer
		dir        string
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = testutil.NewFakeCatalog()
		mgr = manager.New(fake)
		dir = GinkgoT().TempDir()
		controller = controllers.NewPromptsController(mgr, prompt.NewFileLoader(dir), false)
		buffer = &bytes.Buffer{}

		Expect(os.WriteFile(filepath.Join(dir, "astro.yaml"), []byte(astronomyYAML), 0644)).To(Succeed())
	})

	create := func() {
		err := controller.Create(ctx, buffer, controllers.CreateRequest{
			TemplatePath: "astro.yaml",
			Model:        "CLAUDE_V3_5_SONNET",
		})
		Expect(err).NotTo(HaveOccurred())
		buffer.Reset()
	}

	Describe("Create", func() {
		It("uses the template name by default", func() {
			err := controller.Create(ctx, buffer, controllers.CreateRequest{
				TemplatePath: "astro.yaml",
				Model:        "CLAUDE_V3_5_SONNET",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(buffer.String()).To(ContainSubstring("Created prompt astronomical_questions"))
			Expect(buffer.String()).To(ContainSubstring("version: 1"))

			id, ok := mgr.Identity()
			Expect(ok).To(BeTrue())
			Expect(id.Name).To(Equal("astronomical_questions"))
		})

		It("honours an explicit name", func() {
			err := controller.Create(ctx, buffer, controllers.CreateRequest{
				TemplatePath: "astro.yaml",
				Name:         "renamed",
				Model:        string(catalog.ClaudeV3Haiku),
			})
			Expect(err).NotTo(HaveOccurred())

			id, _ := mgr.Identity()
			Expect(id.Name).To(Equal("renamed"))
		})

		It("rejects unknown models", func() {
			err := controller.Create(ctx, buffer, controllers.CreateRequest{TemplatePath: "astro.yaml", Model: "gpt-4"})
			var unsupported *converter.UnsupportedModelError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(unsupported.Model).To(Equal("gpt-4"))
			Expect(fake.Calls).To(BeEmpty())
		})

		It("reports missing template files", func() {
			err := controller.Create(ctx, buffer, controllers.CreateRequest{TemplatePath: "missing.yaml", Model: "CLAUDE_V3_5_SONNET"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Version", func() {
		It("needs an active prompt", func() {
			err := controller.Version(ctx, buffer)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())
		})

		It("prints the new version", func() {
			create()
			Expect(controller.Version(ctx, buffer)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("Created version 2"))
		})
	})

	Describe("Show", func() {
		BeforeEach(create)

		It("prints yaml", func() {
			Expect(controller.Show(ctx, buffer, "astronomical_questions", 1, controllers.FormatYAML)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("template_type: CHAT"))
			Expect(buffer.String()).To(ContainSubstring("{{user_input}}"))
		})

		It("prints json", func() {
			Expect(controller.Show(ctx, buffer, "astronomical_questions", 1, controllers.FormatJSON)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring(`"template_type": "CHAT"`))
		})

		It("prints text in local notation", func() {
			Expect(controller.Show(ctx, buffer, "astronomical_questions", 1, controllers.FormatText)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("[human]\n{user_input}"))
			Expect(buffer.String()).To(ContainSubstring("[system]\nYou are an astronomer. Answer questions about {topic}."))
			Expect(buffer.String()).NotTo(ContainSubstring("[user]"))
		})

		It("rejects stored variants that do not convert back", func() {
			_, err := fake.CreatePrompt(ctx, catalog.CreatePromptInput{
				Name: "tool_prompt",
				Variant: catalog.Variant{
					Model:        catalog.ClaudeV35Sonnet,
					TemplateType: catalog.TemplateTypeChat,
					Messages:     []catalog.Message{{Role: "tool", Text: "x"}},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			for _, format := range []string{controllers.FormatText, controllers.FormatYAML} {
				err = controller.Show(ctx, buffer, "tool_prompt", 1, format)
				var unsupported *converter.UnsupportedRoleError
				Expect(errors.As(err, &unsupported)).To(BeTrue(), format)
			}
		})

		It("rejects unknown formats", func() {
			Expect(controller.Show(ctx, buffer, "astronomical_questions", 1, "xml")).NotTo(Succeed())
		})

		It("reports unknown prompts", func() {
			err := controller.Show(ctx, buffer, "nope", 1, controllers.FormatYAML)
			var notFound *catalog.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		BeforeEach(create)

		It("deletes one version", func() {
			Expect(controller.Delete(ctx, buffer, 1)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("Deleted version 1"))

			_, ok := mgr.Identity()
			Expect(ok).To(BeTrue())
		})

		It("deletes the whole prompt", func() {
			Expect(controller.Delete(ctx, buffer, catalog.DraftVersion)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("Deleted prompt"))

			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("says so when the catalog is empty", func() {
			Expect(controller.List(ctx, buffer, catalog.ListInput{})).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("No prompts found"))
		})

		It("renders a table", func() {
			create()
			Expect(controller.List(ctx, buffer, catalog.ListInput{})).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("NAME"))
			Expect(buffer.String()).To(ContainSubstring("astronomical_questions"))
		})

		It("wraps catalog errors", func() {
			fake.Err = errors.New("offline")
			err := controller.List(ctx, buffer, catalog.ListInput{})
			Expect(err).To(MatchError(ContainSubstring("failed to list prompts")))
		})
	})

	Describe("Status", func() {
		It("reports the empty state", func() {
			controller.Status(buffer)
			Expect(buffer.String()).To(ContainSubstring("No active prompt"))
		})

		It("reports the held prompt", func() {
			create()
			controller.Status(buffer)
			Expect(buffer.String()).To(ContainSubstring("Active prompt astronomical_questions"))
		})
	})
})
