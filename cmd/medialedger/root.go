package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/logging"
	"github.com/choplin/medialedger/internal/usecase"
)

var (
	settings   = viper.New()
	configFile string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:          "medialedger",
	Short:        "medialedger - an append-only ledger of display media assets",
	Long:         "medialedger keeps every reported version of a media asset and answers lookups with the current one.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(settings, configFile)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		logging.Init(level, os.Stderr)

		cfg = loaded
		logging.Debug().Str("db", cfg.DBPath).Msg("configuration loaded")
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/medialedger/config.yaml)")
	flags.String("db", "", "SQLite database path (default $XDG_DATA_HOME/medialedger/medialedger.db)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	_ = settings.BindPFlag(config.KeyDBPath, flags.Lookup("db"))
	_ = settings.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
}

// openMedia opens the configured database. The returned func closes it.
func openMedia() (*usecase.Media, func(), error) {
	dbCtx, err := database.CreateDatabase(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = database.CloseDatabase(dbCtx)
	}
	return usecase.NewMedia(dbCtx, cfg.Retry), closeFn, nil
}
