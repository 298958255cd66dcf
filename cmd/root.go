package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jjenkins/pincode/internal/config"
	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/service"
	"github.com/jjenkins/pincode/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pincode",
	Short: "Look up Indian post offices by pincode",
	Long: `pincode looks up the post offices of a 6-digit Indian postal code using
the public postalpincode.in API and lets you filter them by name.

It can run as a web page (serve), an interactive terminal form (tui) or a
one-shot command (lookup). When a PostgreSQL database is configured every
lookup is kept in a history that can be browsed and summarised.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/pincode/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("PINCODE")
	// e.g. PINCODE_API_BASE_URL for api.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig reads and validates the merged configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the stderr logger used by non-interactive commands
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

func newClient(cfg *config.Config) *service.PincodeClient {
	return service.NewPincodeClient(cfg.API.BaseURL, cfg.API.Timeout)
}

// openHistory connects to the history database. It returns a nil store
// when no database is configured.
func openHistory(cfg *config.Config) (*sql.DB, *store.LookupStore, error) {
	if cfg.Database.URL == "" {
		return nil, nil, nil
	}

	db, err := store.NewDB(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, store.NewLookupStore(db), nil
}
