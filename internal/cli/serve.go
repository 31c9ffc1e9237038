package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uptimeproof/poa/internal/api"
	"github.com/uptimeproof/poa/internal/dnsanchor"
	"github.com/uptimeproof/poa/internal/logging"
	"github.com/uptimeproof/poa/internal/poa"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification document over HTTP",
	Long: `Start the HTTP server exposing the verification endpoints. Each
request runs a fresh verification against the export directory and
the DNS anchor.`,
	Example: `  # Serve on the configured address (default :8080)
  poaverify serve

  # Serve on a custom address
  poaverify serve --addr :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default from config or POA_LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := RequireConfig(); err != nil {
		return err
	}

	flags := commandFlags(cmd)
	if addr := flags.String("addr"); addr != "" {
		cfg.ListenAddr = addr
	}
	if err := flags.Err(); err != nil {
		return err
	}

	fetcher := dnsanchor.NewResolver(dnsanchor.Options{
		Name:                cfg.DNSName,
		Zone:                cfg.DNSZone,
		NSOverride:          cfg.DNSNSOverride,
		AllowSystemResolver: cfg.DNSAllowSystemResolver,
		Timeout:             cfg.DNSTimeout,
	})
	verifier := poa.NewVerifier(cfg, fetcher)
	server := api.NewServer(cfg, verifier)

	logging.Info("PoA verification server starting",
		logging.String("service", cfg.Service),
		logging.String("exportDir", cfg.ExportDir),
		logging.String("dnsName", cfg.DNSName),
		logging.String("api", "http://localhost"+cfg.ListenAddr))

	logging.Info("Endpoints available:")
	logging.Info("  GET /healthz          - Liveness probe")
	logging.Info("  GET /poa/verify.json  - Full verification document")
	logging.Info("  GET /poa/status.json  - Condensed status summary")

	return runServer(server)
}

func runServer(server *api.Server) error {
	logging.Info("Press Ctrl+C to stop")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logging.Error("Server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	<-stop
	logging.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logging.Info("Server stopped")
	return nil
}
