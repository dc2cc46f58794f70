package cmd

import (
	"github.com/killallgit/promptvault/pkg/controllers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported models",
	Long:  `List the model aliases accepted by 'create --model' and the ids they map to`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controllers.NewModelsController().ListModels(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
