// Package cli implements the poaverify command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/logging"
)

var (
	// Version is set at build time
	Version = "1.0.0"

	// App state
	cfg     *config.Config
	cfgErr  error
	envFile string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "poaverify",
	Short: "Proof-of-availability verifier",
	Long: `poaverify checks that a service's availability snapshot chain is
intact and that the DNS-published anchor agrees with the current head
within the configured tolerance. It can run once for scripting or
serve the verification document over HTTP.`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initLogging, initConfig)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"Path to the poa.env file (default "+config.DefaultEnvFile+" or POA_ENV_FILE)")
}

func initLogging() {
	logging.InitDefault()
}

func initConfig() {
	path := envFile
	if path == "" {
		path = os.Getenv("POA_ENV_FILE")
	}
	cfg, cfgErr = config.Load(path)
}

// Config returns the loaded config (may be nil)
func Config() *config.Config {
	return cfg
}

// RequireConfig returns an error if config is not loaded
func RequireConfig() error {
	if cfgErr != nil {
		return cfgErr
	}
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	return nil
}
