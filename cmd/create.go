package cmd

import (
	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/config"
	"github.com/killallgit/promptvault/pkg/controllers"
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create -f TEMPLATE",
	Short: "Create a prompt from a template file",
	Long: `Create a prompt in the catalog from a YAML, JSON or plain text template
file. The created prompt becomes the active prompt for version and delete.`,
	Example: `  promptvault create -f astronomy.yaml --model CLAUDE_V3_5_SONNET
  promptvault create -f summary.txt --name summary --tag team=science`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString("file")
		name, _ := flags.GetString("name")
		model, _ := flags.GetString("model")
		if model == "" {
			model = config.Get().Prompt.DefaultModel
		}

		opts, err := createOptions(cmd)
		if err != nil {
			return err
		}

		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		err = s.controller.Create(cmd.Context(), cmd.OutOrStdout(), controllers.CreateRequest{
			TemplatePath: file,
			Name:         name,
			Model:        model,
			Options:      opts,
		})
		if err != nil {
			return err
		}
		return s.save()
	},
}

func createOptions(cmd *cobra.Command) ([]manager.RequestOption, error) {
	flags := cmd.Flags()
	var opts []manager.RequestOption

	if v, _ := flags.GetString("variant"); v != "" {
		opts = append(opts, manager.WithVariantName(v))
	}
	if v, _ := flags.GetString("default-variant"); v != "" {
		opts = append(opts, manager.WithDefaultVariant(v))
	}
	if v, _ := flags.GetString("description"); v != "" {
		opts = append(opts, manager.WithDescription(v))
	}
	if tags, _ := flags.GetStringToString("tag"); len(tags) > 0 {
		opts = append(opts, manager.WithTags(tags))
	}
	if v, _ := flags.GetString("kms-key"); v != "" {
		opts = append(opts, manager.WithEncryptionKey(v))
	}

	inference := &catalog.InferenceConfig{}
	set := false
	if flags.Changed("max-tokens") {
		v, err := flags.GetInt32("max-tokens")
		if err != nil {
			return nil, err
		}
		inference.MaxTokens = &v
		set = true
	}
	if flags.Changed("temperature") {
		v, err := flags.GetFloat32("temperature")
		if err != nil {
			return nil, err
		}
		inference.Temperature = &v
		set = true
	}
	if flags.Changed("top-p") {
		v, err := flags.GetFloat32("top-p")
		if err != nil {
			return nil, err
		}
		inference.TopP = &v
		set = true
	}
	if stop, _ := flags.GetStringSlice("stop"); len(stop) > 0 {
		inference.StopSequences = stop
		set = true
	}
	if set {
		opts = append(opts, manager.WithInference(inference))
	}

	return opts, nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("file", "f", "", "template file (yaml, json or txt)")
	createCmd.MarkFlagRequired("file")
	createCmd.Flags().StringP("name", "n", "", "prompt name (defaults to the template's name)")
	createCmd.Flags().StringP("model", "m", "", "model id or alias (see 'promptvault models')")
	createCmd.Flags().String("variant", "", "variant name")
	createCmd.Flags().String("default-variant", "", "variant served by default")
	createCmd.Flags().StringP("description", "d", "", "prompt description")
	createCmd.Flags().StringToString("tag", nil, "tags as key=value")
	createCmd.Flags().String("kms-key", "", "customer managed KMS key ARN")
	createCmd.Flags().Int32("max-tokens", 0, "maximum tokens to generate")
	createCmd.Flags().Float32("temperature", 0, "sampling temperature")
	createCmd.Flags().Float32("top-p", 0, "nucleus sampling probability")
	createCmd.Flags().StringSlice("stop", nil, "stop sequences")
}
