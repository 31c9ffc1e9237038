package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uptimeproof/poa/internal/api"
	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/dnsanchor"
	"github.com/uptimeproof/poa/internal/poa"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run one verification and print the verdict",
	Long: `Run the full verification once: read the head pointer, validate the
chain link, fetch the DNS anchor from the zone's authoritative
nameservers, and print the verdict. Exits non-zero unless the proof
is currently valid.`,
	Example: `  # Verify with the deployed defaults
  poaverify verify

  # Verify a local export dir against a fixed nameserver
  poaverify verify --export-dir ./exports --ns ns1.example.net

  # Emit the full JSON document instead of the human summary
  poaverify verify --json`,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.String("export-dir", "", "Export directory holding snapshots and latest.json")
	f.String("dns-name", "", "TXT record carrying the anchor")
	f.String("zone", "", "Zone whose authoritative NS are queried")
	f.String("ns", "", "Comma-separated nameserver override (skips NS discovery)")
	f.Bool("allow-system-resolver", false, "Fall back to the system resolver (may serve stale caches)")
	f.Int("window", 0, "Proof window in seconds")
	f.Bool("json", false, "Emit the full verification document as JSON")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := RequireConfig(); err != nil {
		return err
	}

	runCfg, err := applyVerifyFlags(cmd)
	if err != nil {
		return err
	}

	fetcher := dnsanchor.NewResolver(dnsanchor.Options{
		Name:                runCfg.DNSName,
		Zone:                runCfg.DNSZone,
		NSOverride:          runCfg.DNSNSOverride,
		AllowSystemResolver: runCfg.DNSAllowSystemResolver,
		Timeout:             runCfg.DNSTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := poa.NewVerifier(runCfg, fetcher).Verify(ctx)

	flags := commandFlags(cmd)
	asJSON := flags.Bool("json")
	if err := flags.Err(); err != nil {
		return err
	}

	if asJSON {
		doc := api.BuildVerifyResponse(runCfg, res)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
	} else {
		printResult(runCfg.Service, res)
	}

	if res.Verdict != poa.CoarseOK {
		return fmt.Errorf("verification verdict: %s (%s)", res.Verdict, res.Canonical)
	}
	return nil
}

// applyVerifyFlags overlays command-line overrides on a copy of the loaded
// config, so repeated invocations with different flags stay independent.
func applyVerifyFlags(cmd *cobra.Command) (*config.Config, error) {
	flags := commandFlags(cmd)

	c := *cfg
	if v := flags.String("export-dir"); v != "" {
		c.ExportDir = strings.TrimRight(v, "/")
	}
	if v := flags.String("dns-name"); v != "" {
		c.DNSName = v
	}
	if v := flags.String("zone"); v != "" {
		c.DNSZone = v
	}
	if v := flags.String("ns"); v != "" {
		var servers []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSuffix(strings.TrimSpace(part), "."); part != "" {
				servers = append(servers, part)
			}
		}
		c.DNSNSOverride = servers
	}
	if flags.Changed("allow-system-resolver") {
		c.DNSAllowSystemResolver = flags.Bool("allow-system-resolver")
	}
	if v := flags.Int("window"); v > 0 {
		c.ProofWindowSeconds = v
	}
	if err := flags.Err(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// printResult renders the human-facing summary.
func printResult(service string, res *poa.Result) {
	printHeader("PoA Verification: " + service)

	for _, c := range res.Checks {
		switch c.Status {
		case poa.StatusOK:
			printSuccess("%-22s %s", c.ID, c.Detail)
		case poa.StatusWarn:
			printWarning("%-22s %s", c.ID, c.Detail)
		case poa.StatusUnknown:
			printInfo("•  %-22s %s", c.ID, c.Detail)
		default:
			printInfo("❌ %-22s %s", c.ID, c.Detail)
		}
	}

	fmt.Println()
	if res.Head != nil {
		printInfo("Head:        %s (seq %d)", res.Head.File, res.Head.Sequence)
		printInfo("Head SHA256: %s", res.Head.SHA256)
	}
	if res.Anchor != nil {
		printInfo("DNS NS:      %s", res.Anchor.Server)
		printInfo("DNS TXT:     %s", res.Anchor.Raw)
	}
	if !res.ValidUntil.IsZero() {
		printInfo("Valid until: %s", res.ValidUntil.UTC().Format(time.RFC3339))
	}

	fmt.Println()
	switch res.Canonical {
	case poa.VerdictValid:
		printSuccess("VERDICT: %s (%s)", res.Verdict, res.Message)
	case poa.VerdictExpired:
		printWarning("VERDICT: %s (%s)", res.Verdict, res.Message)
	default:
		printError("VERDICT: %s (%s)", res.Verdict, res.Message)
	}
}
