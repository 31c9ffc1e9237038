package dnsanchor

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	poaerrors "github.com/uptimeproof/poa/internal/errors"
)

// Fetcher resolves the published anchor. Implementations must be safe for
// use by concurrent verification calls.
type Fetcher interface {
	Fetch(ctx context.Context) (*Anchor, error)
}

// Options configures a Resolver.
type Options struct {
	// Name is the TXT record to resolve.
	Name string

	// Zone is the zone whose authoritative nameservers are discovered and
	// queried directly. Ignored when NSOverride is set.
	Zone string

	// NSOverride replaces authoritative NS discovery with a fixed server list.
	NSOverride []string

	// AllowSystemResolver permits falling back to the system resolver when no
	// authoritative server returns a record. Discouraged: the system resolver
	// may serve stale caches.
	AllowSystemResolver bool

	// Timeout bounds each individual DNS query.
	Timeout time.Duration
}

// Resolver fetches the anchor TXT record, preferring the zone's authoritative
// nameservers so a cached or poisoned recursive resolver cannot stand in for
// the registrar-published record.
type Resolver struct {
	opts   Options
	system *net.Resolver
}

// NewResolver creates a Resolver. A zero Timeout defaults to 2s.
func NewResolver(opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	return &Resolver{
		opts:   opts,
		system: net.DefaultResolver,
	}
}

// Fetch resolves and parses the anchor. Every failure mode wraps
// ErrDNSResolution: the caller treats it as a transient, non-fatal condition
// and degrades the DNS-dependent checks instead of aborting.
func (r *Resolver) Fetch(ctx context.Context) (*Anchor, error) {
	servers := r.opts.NSOverride
	var lastErr error

	if len(servers) == 0 && r.opts.Zone != "" {
		var err error
		servers, err = r.authoritativeNS(ctx)
		if err != nil {
			lastErr = err
		}
	}

	for _, ns := range servers {
		txt, err := r.lookupTXTAt(ctx, ns)
		if err != nil {
			lastErr = err
			continue
		}
		if txt != "" {
			a := Parse(txt)
			if a.File == "" && a.SHA256 == "" && a.TS == "" {
				lastErr = fmt.Errorf("%w: %q from %s", poaerrors.ErrDNSRecordMalformed, txt, ns)
				continue
			}
			a.Server = ns
			return a, nil
		}
	}

	if r.opts.AllowSystemResolver {
		txt, err := r.lookupTXT(ctx, r.system)
		if err != nil {
			lastErr = err
		} else if txt != "" {
			a := Parse(txt)
			if a.File == "" && a.SHA256 == "" && a.TS == "" {
				lastErr = fmt.Errorf("%w: %q from system resolver", poaerrors.ErrDNSRecordMalformed, txt)
			} else {
				a.Server = "SYSTEM_RESOLVER"
				return a, nil
			}
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", poaerrors.ErrDNSResolution, r.opts.Name, lastErr)
	}
	return nil, fmt.Errorf("%w: no TXT returned for %s", poaerrors.ErrDNSResolution, r.opts.Name)
}

// authoritativeNS discovers the nameservers for the configured zone.
func (r *Resolver) authoritativeNS(ctx context.Context) ([]string, error) {
	tctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	records, err := r.system.LookupNS(tctx, r.opts.Zone)
	if err != nil {
		return nil, fmt.Errorf("NS lookup for %s: %w", r.opts.Zone, err)
	}

	servers := make([]string, 0, len(records))
	for _, rec := range records {
		host := strings.TrimSuffix(rec.Host, ".")
		if host != "" {
			servers = append(servers, host)
		}
	}
	return servers, nil
}

// lookupTXTAt queries one specific nameserver for the anchor record.
func (r *Resolver) lookupTXTAt(ctx context.Context, ns string) (string, error) {
	resolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: r.opts.Timeout}
			return d.DialContext(ctx, network, net.JoinHostPort(ns, "53"))
		},
	}
	return r.lookupTXT(ctx, resolver)
}

func (r *Resolver) lookupTXT(ctx context.Context, resolver *net.Resolver) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	parts, err := resolver.LookupTXT(tctx, r.opts.Name)
	if err != nil {
		return "", err
	}
	return MergeTXT(parts), nil
}
