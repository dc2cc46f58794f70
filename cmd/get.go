package cmd

import (
	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Fetch a prompt from the catalog",
	Example: `  promptvault get astronomical_questions --version 1
  promptvault get astronomical_questions -o text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetString("version")
		version, err := catalog.ParseVersion(versionFlag)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		return s.controller.Show(cmd.Context(), cmd.OutOrStdout(), args[0], version, output)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringP("version", "v", "1", "version number, or DRAFT")
	getCmd.Flags().StringP("output", "o", "yaml", "output format (yaml, json or text)")
}
