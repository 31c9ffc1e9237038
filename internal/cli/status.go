package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the loaded configuration",
	Long:  `Display the effective verifier configuration without running a verification.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := RequireConfig(); err != nil {
		return err
	}

	printHeader("PoA Verifier Configuration")
	printInfo("Service:      %s", cfg.Service)
	printInfo("Export dir:   %s", cfg.ExportDir)
	printInfo("DNS name:     %s", cfg.DNSName)
	printInfo("DNS zone:     %s", cfg.DNSZone)
	if len(cfg.DNSNSOverride) > 0 {
		printInfo("NS override:  %s", strings.Join(cfg.DNSNSOverride, ", "))
	}
	if cfg.DNSAllowSystemResolver {
		printWarning("System resolver fallback enabled (may serve stale caches)")
	}
	printInfo("Proof window: %ds", cfg.ProofWindowSeconds)
	printInfo("DNS timeout:  %s", cfg.DNSTimeout)
	printInfo("Listen addr:  %s", cfg.ListenAddr)
	if len(cfg.Links) > 0 {
		printInfo("Links:        %s", strings.Join(cfg.Links, ", "))
	}
	return nil
}
