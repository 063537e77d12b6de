package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpradana/subscribeon"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "subscribeon",
	Short:        "Inspect and exercise subscribe-on scheduler bindings",
	Long:         `subscribeon decorates demo calls with their configured scheduler strategy and reports where the returned containers actually ran.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML file mapping method names to strategies")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides log_level in the config file)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(runCmd)
}

// initConfig binds SUBSCRIBEON_* environment variables.
func initConfig() {
	viper.SetEnvPrefix("subscribeon")
	viper.AutomaticEnv()
}

// loadSettings resolves the config file and logger from flags, env and file.
func loadSettings() (subscribeon.Config, zerolog.Logger, error) {
	var cfg subscribeon.Config
	if path := viper.GetString("config"); path != "" {
		loaded, err := subscribeon.LoadConfig(path)
		if err != nil {
			return cfg, zerolog.Nop(), err
		}
		cfg = loaded
	}
	if level := viper.GetString("log_level"); level != "" {
		cfg.LogLevel = level
	}

	level, err := cfg.Level()
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("component", "subscribeon").
		Logger()
	return cfg, logger, nil
}
