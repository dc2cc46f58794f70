package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/killallgit/promptvault/pkg/config"
	"github.com/killallgit/promptvault/pkg/controllers"
	"github.com/killallgit/promptvault/pkg/logger"
	"github.com/killallgit/promptvault/pkg/manager"
	"github.com/killallgit/promptvault/pkg/prompt"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "promptvault",
	Short: "Store chat prompt templates in a managed prompt catalog",
	Long: `promptvault converts local chat prompt templates into prompt catalog
entries (Amazon Bedrock Prompt Management or a local SQLite catalog),
versions them, and fetches them back as templates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.promptvault/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("backend", "", "catalog backend (bedrock or sqlite)")
	viper.BindPFlag("catalog.backend", rootCmd.PersistentFlags().Lookup("backend"))

	rootCmd.PersistentFlags().String("region", "", "AWS region of the Bedrock catalog")
	viper.BindPFlag("catalog.region_name", rootCmd.PersistentFlags().Lookup("region"))

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func initConfig() error {
	if _, err := config.Load(cfgFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(); err != nil {
		return err
	}

	logger.Debug("Using config file: %s", viper.ConfigFileUsed())
	return nil
}

// session is a manager restored from the state file plus the controller
// driving it. save writes the manager's identity back.
type session struct {
	mgr        *manager.Manager
	controller *controllers.PromptsController
	statePath  string
}

func newSession(ctx context.Context) (*session, error) {
	cfg := config.Get()

	mgr, err := manager.NewFromConfig(ctx, catalog.Config{
		Backend:    cfg.Catalog.Backend,
		RegionName: cfg.Catalog.RegionName,
		Options:    cfg.Catalog.Options,
	}, manager.WithDefaultVariantName(cfg.Prompt.VariantName))
	if err != nil {
		return nil, err
	}

	if err := mgr.LoadIdentity(cfg.StateFile); err != nil {
		mgr.Close()
		return nil, err
	}

	color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	return &session{
		mgr:        mgr,
		controller: controllers.NewPromptsController(mgr, prompt.NewFileLoader(cfg.Prompt.TemplateDir), color),
		statePath:  cfg.StateFile,
	}, nil
}

func (s *session) close() {
	if err := s.mgr.Close(); err != nil {
		logger.Warn("Failed to close catalog: %v", err)
	}
}

func (s *session) save() error {
	if err := s.mgr.SaveIdentity(s.statePath); err != nil {
		return fmt.Errorf("failed to save active prompt: %w", err)
	}
	return nil
}
