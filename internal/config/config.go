// Package config manages PoA verifier configuration
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the deployed uptimeproof layout.
const (
	DefaultEnvFile   = "/opt/uptimeproof/infra/poa.env"
	DefaultExportDir = "/proof/exports"
	DefaultDNSName   = "_poa.uptimeproof.io"
	DefaultDNSZone   = "uptimeproof.io"

	// DefaultProofWindowSeconds is how long a snapshot counts as currently valid
	// after its own timestamp.
	DefaultProofWindowSeconds = 300

	// DefaultDNSTimeout bounds a single TXT lookup.
	DefaultDNSTimeout = 2 * time.Second
)

// Config is the explicit configuration value passed into the engine at
// construction. It is never mutated after Load.
type Config struct {
	// Service is the public name reported in verification responses.
	Service string

	// ExportDir is the directory holding snapshot files and latest.json.
	ExportDir string

	// DNSName is the TXT record carrying the published anchor.
	DNSName string

	// DNSZone is the zone whose authoritative NS are queried for DNSName.
	DNSZone string

	// DNSNSOverride, when non-empty, replaces the authoritative NS lookup.
	DNSNSOverride []string

	// DNSAllowSystemResolver permits falling back to the system resolver when
	// no authoritative server answers. Discouraged outside development.
	DNSAllowSystemResolver bool

	// DNSTimeout bounds each individual DNS query.
	DNSTimeout time.Duration

	// ProofWindowSeconds is the proof validity window after the head timestamp.
	ProofWindowSeconds int

	// ListenAddr is the HTTP API listen address for serve mode.
	ListenAddr string

	// Links are informational URLs echoed in the verification response.
	Links []string
}

// Default returns a Config populated with the deployed defaults.
func Default() *Config {
	return &Config{
		Service:            "uptimeproof.io",
		ExportDir:          DefaultExportDir,
		DNSName:            DefaultDNSName,
		DNSZone:            DefaultDNSZone,
		DNSTimeout:         DefaultDNSTimeout,
		ProofWindowSeconds: DefaultProofWindowSeconds,
		ListenAddr:         ":8080",
	}
}

// Load builds a Config from defaults, the poa.env file at path (optional),
// and POA_* environment overrides, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultEnvFile
	}
	env, err := loadEnvFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyEnv(env)
	cfg.applyEnv(processEnv())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays recognized keys from env onto the config. Unknown keys
// are ignored so the env file can carry exporter/publisher settings too.
func (c *Config) applyEnv(env map[string]string) {
	if v := env["SERVICE"]; v != "" {
		c.Service = v
	}
	if v := env["POA_EXPORT_DIR"]; v != "" {
		c.ExportDir = strings.TrimRight(v, "/")
	}
	if v := env["DNS_NAME"]; v != "" {
		c.DNSName = v
	}
	if v := env["DNS_ZONE"]; v != "" {
		c.DNSZone = v
	}
	if v := env["POA_DNS_NS_OVERRIDE"]; v != "" {
		c.DNSNSOverride = splitList(v)
	}
	if v := env["POA_DNS_ALLOW_SYSTEM_RESOLVER"]; v != "" {
		c.DNSAllowSystemResolver = v == "1" || strings.EqualFold(v, "true")
	}
	if v := env["POA_DNS_TIMEOUT_SECONDS"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DNSTimeout = time.Duration(n) * time.Second
		}
	}
	if v := env["POA_PROOF_WINDOW_SECONDS"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ProofWindowSeconds = n
		}
	}
	if v := env["POA_LISTEN_ADDR"]; v != "" {
		c.ListenAddr = v
	}
	if v := env["POA_LINKS"]; v != "" {
		c.Links = splitList(v)
	}
}

// Validate checks the config is usable for verification.
func (c *Config) Validate() error {
	if c.ExportDir == "" {
		return fmt.Errorf("config: export dir is required")
	}
	if c.DNSName == "" {
		return fmt.Errorf("config: dns name is required")
	}
	if c.DNSZone == "" && len(c.DNSNSOverride) == 0 && !c.DNSAllowSystemResolver {
		return fmt.Errorf("config: dns zone is required unless an NS override or system resolver is allowed")
	}
	if c.ProofWindowSeconds <= 0 {
		return fmt.Errorf("config: proof window must be positive")
	}
	if c.DNSTimeout <= 0 {
		return fmt.Errorf("config: dns timeout must be positive")
	}
	return nil
}

// ProofWindow returns the proof window as a duration.
func (c *Config) ProofWindow() time.Duration {
	return time.Duration(c.ProofWindowSeconds) * time.Second
}

// processEnv collects the POA-relevant variables from the process environment.
func processEnv() map[string]string {
	keys := []string{
		"SERVICE", "POA_EXPORT_DIR", "DNS_NAME", "DNS_ZONE",
		"POA_DNS_NS_OVERRIDE", "POA_DNS_ALLOW_SYSTEM_RESOLVER",
		"POA_DNS_TIMEOUT_SECONDS", "POA_PROOF_WINDOW_SECONDS",
		"POA_LISTEN_ADDR", "POA_LINKS",
	}
	env := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
