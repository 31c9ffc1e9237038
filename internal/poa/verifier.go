// Package poa implements the proof-of-availability verification engine: it
// checks a local chain of hashed snapshot files against the DNS-published
// anchor and derives a deterministic verdict.
package poa

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/digest"
	"github.com/uptimeproof/poa/internal/dnsanchor"
	"github.com/uptimeproof/poa/internal/logging"
)

// Verifier runs the full verification flow. Each call is stateless and
// re-entrant: the verifier holds only read-only configuration and
// collaborators, so concurrent API callers can share one instance.
type Verifier struct {
	cfg     *config.Config
	heads   *HeadResolver
	chain   *ChainValidator
	fetcher dnsanchor.Fetcher
	clock   Clock
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithClock replaces the wall clock, for deterministic expiry tests.
func WithClock(c Clock) Option {
	return func(v *Verifier) { v.clock = c }
}

// NewVerifier wires the engine from explicit configuration. The config value
// is treated as immutable for the verifier's lifetime.
func NewVerifier(cfg *config.Config, fetcher dnsanchor.Fetcher, opts ...Option) *Verifier {
	v := &Verifier{
		cfg:     cfg,
		heads:   NewHeadResolver(cfg.ExportDir),
		chain:   NewChainValidator(cfg.ExportDir),
		fetcher: fetcher,
		clock:   SystemClock(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs every check and aggregates one verdict. No individual check
// failure aborts the computation: all checks are evaluated and reported, and
// a FAIL verdict is a successful, well-formed result rather than an error.
func (v *Verifier) Verify(ctx context.Context) *Result {
	res := &Result{
		Now:                v.clock.Now().UTC(),
		ProofWindowSeconds: v.cfg.ProofWindowSeconds,
	}

	head, headErr := v.heads.Resolve()
	res.Head = head

	headCheck := CheckResult{ID: CheckHeadLatestJSON, Status: StatusOK}
	if headErr != nil {
		headCheck.Status = StatusFail
		headCheck.Detail = headErr.Error()
		headCheck.Err = headErr
		logging.Warn("head pointer unavailable", logging.Err(headErr))
	} else {
		headCheck.Detail = fmt.Sprintf("head %s seq %d", head.File, head.Sequence)
	}

	// Chain validation (local I/O) and anchor fetch (network I/O) have no
	// data dependency; run them concurrently so request latency is bounded
	// by the slower of the two.
	var (
		wg        sync.WaitGroup
		chainRes  CheckResult
		anchor    *dnsanchor.Anchor
		anchorErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		chainRes = v.chain.Validate(head)
	}()
	go func() {
		defer wg.Done()
		anchor, anchorErr = v.fetcher.Fetch(ctx)
	}()
	wg.Wait()

	res.Anchor = anchor
	if anchorErr != nil {
		logging.Warn("dns anchor fetch failed", logging.Err(anchorErr))
	}
	if chainRes.Status == StatusFail {
		// The security-relevant failure: distinguish it in logs from the
		// merely transient DNS case, even though the API reports both
		// uniformly via checks[].
		logging.Error("chain link broken", logging.Err(chainRes.Err))
	}

	matchedCheck, headMatchCheck, lagOK := v.reconcileAnchor(head, anchor, anchorErr)

	expiredKnown := head != nil
	notExpiredCheck := CheckResult{ID: CheckNotExpired, Status: StatusUnknown, Detail: "head timestamp unavailable"}
	notExpired := false
	if expiredKnown {
		exp := EvaluateExpiry(head.TS, v.cfg.ProofWindow(), res.Now)
		res.ValidUntil = exp.ValidUntil
		notExpired = !exp.Expired
		if notExpired {
			notExpiredCheck = CheckResult{
				ID:     CheckNotExpired,
				Status: StatusOK,
				Detail: fmt.Sprintf("proof valid until %s", exp.ValidUntil.UTC().Format("2006-01-02T15:04:05Z")),
			}
		} else {
			notExpiredCheck = CheckResult{
				ID:     CheckNotExpired,
				Status: StatusFail,
				Detail: fmt.Sprintf("proof window elapsed at %s", exp.ValidUntil.UTC().Format("2006-01-02T15:04:05Z")),
			}
		}
	}

	res.Checks = []CheckResult{headCheck, chainRes, matchedCheck, headMatchCheck, notExpiredCheck}
	res.Normalized = NormalizedChecks{
		HeadLatestJSON:     headCheck.Status == StatusOK,
		DNSMatchesHead:     headMatchCheck.Status == StatusOK,
		DNSLagOK:           lagOK,
		DNSMatchedFileHash: matchedCheck.Status == StatusOK,
		ChainOK:            chainRes.Status == StatusOK || chainRes.Status == StatusUnknown,
		NotExpired:         notExpired,
	}

	res.Canonical, res.Reason = aggregate(res.Normalized, expiredKnown)
	res.Message = message(res.Canonical, res.Normalized, res.ValidUntil)
	if res.Canonical == VerdictValid {
		res.Verdict = CoarseOK
	} else {
		res.Verdict = CoarseFail
	}

	return res
}

// reconcileAnchor compares the DNS claim against the current and previous
// heads. Digests are recomputed from the snapshot bytes on disk, never taken
// from the pointer record's claims, so a rewritten file cannot hide behind a
// stale pointer. The anchor matching the previous head exactly is single-step
// lag tolerance: the underlying check reports WARN but the normalized
// dns_lag_ok boolean stays true, absorbing DNS propagation delay without
// calling it a failure.
func (v *Verifier) reconcileAnchor(head *HeadPointer, anchor *dnsanchor.Anchor, fetchErr error) (matched, headMatch CheckResult, lagOK bool) {
	matched = CheckResult{ID: CheckDNSMatchedFileHash, Status: StatusFail}
	headMatch = CheckResult{ID: CheckDNSMatchesHead, Status: StatusFail}

	if fetchErr != nil || anchor == nil {
		detail := "dns anchor unavailable"
		if fetchErr != nil {
			detail = fetchErr.Error()
		}
		matched.Detail = detail
		matched.Err = fetchErr
		headMatch.Detail = detail
		headMatch.Err = fetchErr
		return matched, headMatch, false
	}
	if head == nil {
		matched.Detail = "head pointer unavailable"
		headMatch.Detail = "head pointer unavailable"
		return matched, headMatch, false
	}

	headSum, err := digest.File(v.heads.SnapshotPath(head.File))
	if err != nil {
		detail := fmt.Sprintf("head snapshot %s unreadable: %v", head.File, err)
		matched.Detail = detail
		headMatch.Detail = detail
		return matched, headMatch, false
	}

	prev := head.Previous
	var prevSum string
	if prev != nil && prev.File != "" {
		// A missing or unreadable predecessor is the chain check's finding;
		// here it simply cannot match the anchor.
		prevSum, _ = digest.File(v.heads.SnapshotPath(prev.File))
	}

	switch {
	case digest.Equal(anchor.SHA256, headSum):
		matched.Status = StatusOK
		matched.Detail = fmt.Sprintf("anchor digest matches head snapshot %s", head.File)
	case digest.Equal(anchor.SHA256, prevSum):
		matched.Status = StatusOK
		matched.Detail = fmt.Sprintf("anchor digest matches previous snapshot %s", prev.File)
	default:
		matched.Detail = "anchor digest matches no local snapshot bytes"
	}

	switch {
	case anchor.File == head.File && digest.Equal(anchor.SHA256, headSum):
		headMatch.Status = StatusOK
		headMatch.Detail = "anchor matches current head exactly"
		lagOK = true
	case prev != nil && anchor.File == prev.File && digest.Equal(anchor.SHA256, prevSum):
		headMatch.Status = StatusWarn
		headMatch.Detail = fmt.Sprintf("anchor lags at previous head %s (propagation delay tolerated)", prev.File)
		lagOK = true
	default:
		headMatch.Detail = fmt.Sprintf("anchor %s/%s does not match head %s/%s", anchor.File, anchor.SHA256, head.File, headSum)
	}

	return matched, headMatch, lagOK
}
