package cmd

import (
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Snapshot the active prompt into a new version",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []manager.RequestOption
		if v, _ := cmd.Flags().GetString("description"); v != "" {
			opts = append(opts, manager.WithDescription(v))
		}
		if tags, _ := cmd.Flags().GetStringToString("tag"); len(tags) > 0 {
			opts = append(opts, manager.WithTags(tags))
		}

		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.controller.Version(cmd.Context(), cmd.OutOrStdout(), opts...); err != nil {
			return err
		}
		return s.save()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringP("description", "d", "", "version description")
	versionCmd.Flags().StringToString("tag", nil, "tags as key=value")
}
