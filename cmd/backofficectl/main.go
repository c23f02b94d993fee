// Command backofficectl drives a running back-office console from the
// terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terra-clan/backoffice/pkg/client"
)

const (
	cfgKeyServer  = "server"
	cfgKeyAPIKey  = "api_key"
	cfgKeyTimeout = "timeout"
	cfgKeyJSON    = "json"
	cfgKeyVerbose = "verbose"

	defaultServer  = "http://localhost:8080"
	defaultTimeout = 30 * time.Second
)

var (
	configFile string

	cfg *viper.Viper
	console *client.Client
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", client.Message(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backofficectl",
	Short: "backofficectl manages catalog and customer records through the console",
	Long: `backofficectl talks to a running back-office console. The console owns
the operator session, so log in once and every later command reuses it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: connect,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./backofficectl.yaml or ~/.config/backoffice/backofficectl.yaml)")
	rootCmd.PersistentFlags().String(cfgKeyServer, defaultServer, "console base URL")
	rootCmd.PersistentFlags().String(cfgKeyAPIKey, "", "console API key (or BACKOFFICECTL_API_KEY)")
	rootCmd.PersistentFlags().Duration(cfgKeyTimeout, defaultTimeout, "request timeout")
	rootCmd.PersistentFlags().Bool(cfgKeyJSON, false, "output as JSON")
	rootCmd.PersistentFlags().BoolP(cfgKeyVerbose, "v", false, "log requests to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(recentCmd)
}

// connect loads configuration and builds the console client
func connect(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(cmd, configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = v

	level := slog.LevelWarn
	if cfg.GetBool(cfgKeyVerbose) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	apiKey := cfg.GetString(cfgKeyAPIKey)
	if apiKey == "" {
		return fmt.Errorf("a console API key is required: set --%s or BACKOFFICECTL_API_KEY", cfgKeyAPIKey)
	}

	c, err := client.New(cfg.GetString(cfgKeyServer),
		client.WithTimeout(cfg.GetDuration(cfgKeyTimeout)),
		client.WithAuthToken(apiKey),
	)
	if err != nil {
		return err
	}
	console = c
	return nil
}

// loadConfig layers flags over BACKOFFICECTL_* env over the config file.
// A missing config file is not an error.
func loadConfig(cmd *cobra.Command, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)
	v.SetDefault(cfgKeyTimeout, defaultTimeout)

	v.SetEnvPrefix("BACKOFFICECTL")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("backofficectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/backoffice")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
