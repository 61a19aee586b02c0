package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/gameiq/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "gameiq",
	Short:         "Sports-training quiz engine",
	Long:          "GameIQ serves position-specific sports quizzes that unlock one after another, with a metered AI coach.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./gameiq.yaml or the user config dir)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides db.dsn and GAMEIQ_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration; --db wins over every other source of
// the database location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Driver = "sqlite"
		cfg.DB.DSN = p
	}
	return cfg, nil
}
