package cmd

import (
	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active prompt, or one of its versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := catalog.DraftVersion
		if cmd.Flags().Changed("version") {
			v, _ := cmd.Flags().GetInt("version")
			if v <= 0 {
				return &catalog.InvalidVersionError{Version: cmd.Flags().Lookup("version").Value.String()}
			}
			version = v
		}

		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.controller.Delete(cmd.Context(), cmd.OutOrStdout(), version); err != nil {
			return err
		}
		return s.save()
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().IntP("version", "v", 0, "delete only this version")
}
