package cmd

import (
	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List prompts in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		limit, _ := cmd.Flags().GetInt("max")

		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		return s.controller.List(cmd.Context(), cmd.OutOrStdout(), catalog.ListInput{Name: name, MaxResults: limit})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		s.controller.Status(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)

	listCmd.Flags().String("name", "", "only list prompts with this name")
	listCmd.Flags().Int("max", 0, "maximum number of prompts to list")
}
