package manager_test

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/converter"
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/killallgit/promptvault/pkg/testutil"
	"github.com/killallgit/promptvault/pkg/testutil/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

func astronomyTemplate() *prompt.ChatPromptTemplate {
	chat, err := prompt.NewChatTemplateFromMessages([]prompt.MessageDefinition{
		{Role: "system", Template: "You are an astronomer. Answer questions about {topic}."},
		{Role: "human", Template: "{user_input}"},
	})
	Expect(err).NotTo(HaveOccurred())
	return chat
}

var _ = Describe("Manager", func() {
	var (
		ctx   context.Context
		fake  *testutil.FakeCatalog
		mgr   *manager.Manager
		chat  *prompt.ChatPromptTemplate
		model catalog.ModelID
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = testutil.NewFakeCatalog()
		mgr = manager.New(fake)
		chat = astronomyTemplate()

		var err error
		model, err = catalog.ParseModel("CLAUDE_V3_5_SONNET")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("in the empty state", func() {
		It("holds no identity", func() {
			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())
		})

		It("refuses to create a version", func() {
			_, err := mgr.CreatePromptVersion(ctx)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})

		It("refuses to delete", func() {
			_, err := mgr.DeletePrompt(ctx)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())

			_, err = mgr.DeletePromptVersion(ctx, 1)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})

		It("can still fetch prompts by name", func() {
			other := manager.New(fake)
			_, err := other.CreatePrompt(ctx, chat, "shared", model)
			Expect(err).NotTo(HaveOccurred())

			tmpl, err := mgr.GetPrompt(ctx, "shared", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tmpl.GetInputVariables()).To(Equal([]string{"topic", "user_input"}))
		})
	})

	Describe("CreatePrompt", func() {
		It("moves to the created state", func() {
			record, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Version).To(Equal(1))

			id, ok := mgr.Identity()
			Expect(ok).To(BeTrue())
			Expect(id.Name).To(Equal("astronomical_questions"))
			Expect(id.ID).To(Equal(record.ID))
			Expect(id.Version).To(Equal(1))
		})

		It("stores the converted variant", func() {
			_, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model,
				manager.WithVariantName("v-main"),
				manager.WithDescription("space questions"),
			)
			Expect(err).NotTo(HaveOccurred())

			v, err := mgr.GetVariant(ctx, "astronomical_questions", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Name).To(Equal("v-main"))
			Expect(v.Model).To(Equal(catalog.ClaudeV35Sonnet))
			Expect(v.InputVariables).To(Equal([]string{"topic", "user_input"}))
			Expect(v.Messages[1]).To(Equal(catalog.Message{Role: catalog.RoleUser, Text: "{{user_input}}"}))
		})

		It("uses the manager's default variant name", func() {
			named := manager.New(fake, manager.WithDefaultVariantName("house-style"))
			_, err := named.CreatePrompt(ctx, chat, "styled", model)
			Expect(err).NotTo(HaveOccurred())

			v, err := named.GetVariant(ctx, "styled", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Name).To(Equal("house-style"))
		})

		It("replaces the held prompt on a second create", func() {
			first, err := mgr.CreatePrompt(ctx, chat, "first", model)
			Expect(err).NotTo(HaveOccurred())
			second, err := mgr.CreatePrompt(ctx, chat, "second", model)
			Expect(err).NotTo(HaveOccurred())

			id, _ := mgr.Identity()
			Expect(id.ID).To(Equal(second.ID))

			_, err = mgr.GetPrompt(ctx, "first", 1)
			Expect(err).NotTo(HaveOccurred(), "the replaced prompt %s stays in the catalog", first.ID)
		})

		It("leaves the state unchanged when the name exists", func() {
			_, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())
			before, _ := mgr.Identity()

			_, err = mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			var exists *catalog.AlreadyExistsError
			Expect(errors.As(err, &exists)).To(BeTrue())

			after, _ := mgr.Identity()
			Expect(after).To(Equal(before))
		})

		It("rejects unsupported models without calling the catalog", func() {
			_, err := mgr.CreatePrompt(ctx, chat, "x", catalog.ModelID("gpt-4"))
			var unsupported *converter.UnsupportedModelError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())

			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())
		})

		It("rejects few-shot templates", func() {
			examples, err := prompt.QuickChatTemplate("{q}", "{a}")
			Expect(err).NotTo(HaveOccurred())
			fewShot := prompt.NewFewShotChatTemplate(examples, nil, chat)

			_, err = mgr.CreatePrompt(ctx, fewShot, "x", model)
			var unsupported *converter.UnsupportedTemplateTypeError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})
	})

	Describe("in the created state", func() {
		var record *catalog.PromptRecord

		BeforeEach(func() {
			var err error
			record, err = mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates increasing versions", func() {
			v2, err := mgr.CreatePromptVersion(ctx, manager.WithDescription("tweak"))
			Expect(err).NotTo(HaveOccurred())
			Expect(v2.Version).To(Equal(2))

			v3, err := mgr.CreatePromptVersion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(v3.Version).To(Equal(3))

			id, _ := mgr.Identity()
			Expect(id.Version).To(Equal(3))
		})

		It("keeps the held version when versioning fails", func() {
			fake.Err = errors.New("throttled")
			_, err := mgr.CreatePromptVersion(ctx)
			Expect(err).To(MatchError("throttled"))

			id, _ := mgr.Identity()
			Expect(id.Version).To(Equal(1))
		})

		It("fetches by id", func() {
			tmpl, err := mgr.GetPromptByID(ctx, record.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tmpl.Kind()).To(Equal(prompt.KindChat))
		})

		It("deletes a single version and stays created", func() {
			_, err := mgr.CreatePromptVersion(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.DeletePromptVersion(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			_, ok := mgr.Identity()
			Expect(ok).To(BeTrue())

			_, err = mgr.GetPrompt(ctx, "astronomical_questions", 1)
			var notFound *catalog.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("refuses to delete the draft as a version", func() {
			_, err := mgr.DeletePromptVersion(ctx, catalog.DraftVersion)
			Expect(err).To(HaveOccurred())
		})

		It("deletes the prompt and returns to the empty state", func() {
			result, err := mgr.DeletePrompt(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(record.ID))

			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())

			_, err = mgr.GetPrompt(ctx, "astronomical_questions", 1)
			var notFound *catalog.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())

			_, err = mgr.CreatePromptVersion(ctx)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())
		})

		It("fails a second delete without calling the catalog", func() {
			_, err := mgr.DeletePrompt(ctx)
			Expect(err).NotTo(HaveOccurred())
			calls := len(fake.Calls)

			_, err = mgr.DeletePrompt(ctx)
			Expect(errors.Is(err, manager.ErrNoActivePrompt)).To(BeTrue())
			Expect(fake.Calls).To(HaveLen(calls))
		})

		It("keeps the held prompt when delete fails", func() {
			fake.Err = errors.New("access denied")
			_, err := mgr.DeletePrompt(ctx)
			Expect(err).To(HaveOccurred())

			id, ok := mgr.Identity()
			Expect(ok).To(BeTrue())
			Expect(id.ID).To(Equal(record.ID))
		})

		It("lists prompts", func() {
			summaries, err := mgr.ListPrompts(ctx, catalog.ListInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].Name).To(Equal("astronomical_questions"))
		})
	})

	Describe("end to end", func() {
		It("creates, versions, fetches and deletes astronomical_questions", func() {
			_, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.CreatePromptVersion(ctx)
			Expect(err).NotTo(HaveOccurred())

			fetched, err := mgr.GetChatPrompt(ctx, "astronomical_questions", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.GetInputVariables()).To(ContainElement("user_input"))

			values := map[string]any{"topic": "galaxies", "user_input": "How old is the Milky Way?"}
			want, err := chat.FormatMessages(values)
			Expect(err).NotTo(HaveOccurred())
			got, err := fetched.FormatMessages(values)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))

			_, err = mgr.DeletePrompt(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Close", func() {
		It("is a no-op for clients without resources", func() {
			Expect(mgr.Close()).To(Succeed())
		})

		It("closes the SQLite catalog", func() {
			sqliteMgr, err := manager.NewFromConfig(ctx, catalog.Config{
				Backend: catalog.BackendSQLite,
				Options: map[string]string{"path": filepath.Join(GinkgoT().TempDir(), "catalog.db")},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = sqliteMgr.ListPrompts(ctx, catalog.ListInput{})
			Expect(err).NotTo(HaveOccurred())

			Expect(sqliteMgr.Close()).To(Succeed())
			_, err = sqliteMgr.ListPrompts(ctx, catalog.ListInput{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("identity persistence", func() {
		var statePath string

		BeforeEach(func() {
			statePath = filepath.Join(GinkgoT().TempDir(), "state", "identity.yaml")
		})

		It("saves and restores the held prompt", func() {
			record, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SaveIdentity(statePath)).To(Succeed())

			restored := manager.New(fake)
			Expect(restored.LoadIdentity(statePath)).To(Succeed())

			id, ok := restored.Identity()
			Expect(ok).To(BeTrue())
			Expect(id.ID).To(Equal(record.ID))
			Expect(id.Name).To(Equal("astronomical_questions"))

			_, err = restored.CreatePromptVersion(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("treats a missing file as the empty state", func() {
			Expect(mgr.LoadIdentity(statePath)).To(Succeed())
			_, ok := mgr.Identity()
			Expect(ok).To(BeFalse())
		})

		It("removes the file once the prompt is deleted", func() {
			_, err := mgr.CreatePrompt(ctx, chat, "astronomical_questions", model)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SaveIdentity(statePath)).To(Succeed())

			_, err = mgr.DeletePrompt(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SaveIdentity(statePath)).To(Succeed())

			Expect(statePath).NotTo(BeAnExistingFile())
		})
	})
})

var _ = Describe("Manager with a mocked catalog", func() {
	var (
		ctx    context.Context
		client *mocks.MockCatalog
		mgr    *manager.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mocks.MockCatalog{}
		mgr = manager.New(client)
	})

	It("passes request options through to the catalog", func() {
		client.On("CreatePrompt", mock.Anything, mock.MatchedBy(func(in catalog.CreatePromptInput) bool {
			return in.Name == "tagged" &&
				in.Description == "with tags" &&
				in.Tags["team"] == "science" &&
				in.DefaultVariant == "variant-001" &&
				in.CustomerEncryptionKeyArn == "arn:aws:kms:key" &&
				in.Variant.Inference != nil
		})).Return(&catalog.PromptRecord{ID: "PROMPT1", Name: "tagged"}, nil)

		maxTokens := int32(256)
		record, err := mgr.CreatePrompt(ctx, astronomyTemplate(), "tagged", catalog.ClaudeV3Haiku,
			manager.WithDescription("with tags"),
			manager.WithTags(map[string]string{"team": "science"}),
			manager.WithDefaultVariant("variant-001"),
			manager.WithEncryptionKey("arn:aws:kms:key"),
			manager.WithInference(&catalog.InferenceConfig{MaxTokens: &maxTokens}),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(record.Version).To(Equal(catalog.DraftVersion))

		id, ok := mgr.Identity()
		Expect(ok).To(BeTrue())
		Expect(id.Version).To(Equal(catalog.DraftVersion))
		client.AssertExpectations(GinkgoT())
	})

	It("propagates catalog errors unchanged", func() {
		cause := &catalog.NotFoundError{Prompt: "gone", Version: 3}
		client.On("GetPrompt", mock.Anything, "gone", 3).Return(nil, cause)

		_, err := mgr.GetPrompt(ctx, "gone", 3)
		Expect(err).To(BeIdenticalTo(cause))
	})

	It("versions the restored prompt by id", func() {
		mgr.Restore(manager.Identity{Name: "restored", ID: "PROMPT7", Version: 2})
		client.On("CreatePromptVersion", mock.Anything, catalog.CreateVersionInput{PromptID: "PROMPT7"}).
			Return(&catalog.PromptRecord{ID: "PROMPT7", Version: 3}, nil)

		record, err := mgr.CreatePromptVersion(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(record.Version).To(Equal(3))
		client.AssertExpectations(GinkgoT())
	})

	It("deletes by the held id", func() {
		mgr.Restore(manager.Identity{Name: "restored", ID: "PROMPT7", Version: 2})
		client.On("DeletePrompt", mock.Anything, "PROMPT7", catalog.DraftVersion).
			Return(&catalog.DeleteResult{ID: "PROMPT7", Status: "DELETED"}, nil)

		_, err := mgr.DeletePrompt(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, ok := mgr.Identity()
		Expect(ok).To(BeFalse())
	})
})
