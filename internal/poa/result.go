package poa

import (
	"strings"
	"time"

	"github.com/uptimeproof/poa/internal/dnsanchor"
)

// Verdict is the canonical three-state machine truth, distinct from the
// coarser two-state public verdict.
type Verdict string

const (
	VerdictValid   Verdict = "VALID"
	VerdictInvalid Verdict = "INVALID"
	VerdictExpired Verdict = "EXPIRED"
)

// Coarse top-level verdicts. EXPIRED and INVALID collapse into FAIL by
// design; callers needing the distinction read the canonical verdict.
const (
	CoarseOK   = "OK"
	CoarseFail = "FAIL"
)

// NormalizedChecks is the stable boolean integration surface. The key set is
// a compatibility contract: keys are never removed or renamed, new keys may
// be appended.
type NormalizedChecks struct {
	HeadLatestJSON     bool `json:"head_latest_json"`
	DNSMatchesHead     bool `json:"dns_matches_head"`
	DNSLagOK           bool `json:"dns_lag_ok"`
	DNSMatchedFileHash bool `json:"dns_matched_file_hash"`
	ChainOK            bool `json:"chain_ok"`
	NotExpired         bool `json:"not_expired"`
}

// Result is the aggregate outcome of one verification call. It is computed
// fresh per call, never persisted, and purely derived from the head pointer,
// the on-disk chain and the DNS anchor at call time.
type Result struct {
	Now                time.Time
	Head               *HeadPointer      // nil when the pointer record was unreadable
	Anchor             *dnsanchor.Anchor // nil when DNS resolution failed
	ValidUntil         time.Time         // zero when no head timestamp is available
	ProofWindowSeconds int

	Verdict    string // coarse OK/FAIL
	Canonical  Verdict
	Reason     string
	Message    string
	Checks     []CheckResult
	Normalized NormalizedChecks
}

// aggregate derives the canonical and coarse verdicts from the normalized
// check set. headKnown gates the expiry override: with no readable head there
// is no timestamp to expire, so the result is INVALID rather than EXPIRED.
func aggregate(n NormalizedChecks, headKnown bool) (Verdict, string) {
	switch {
	case headKnown && !n.NotExpired:
		return VerdictExpired, "proof window elapsed"
	case !n.HeadLatestJSON || !n.DNSLagOK || !n.ChainOK:
		return VerdictInvalid, "failed: " + strings.Join(failedKeys(n), ", ")
	default:
		return VerdictValid, "all checks passed"
	}
}

// failedKeys lists the normalized keys that gate validity and are false.
func failedKeys(n NormalizedChecks) []string {
	var keys []string
	if !n.HeadLatestJSON {
		keys = append(keys, "head_latest_json")
	}
	if !n.ChainOK {
		keys = append(keys, "chain_ok")
	}
	if !n.DNSLagOK {
		keys = append(keys, "dns_lag_ok")
	}
	return keys
}

// message builds the human-facing summary for the top-level response.
func message(v Verdict, n NormalizedChecks, validUntil time.Time) string {
	switch v {
	case VerdictValid:
		if !n.DNSMatchesHead {
			return "proof verified; DNS anchor lags one snapshot behind the head"
		}
		return "proof verified against DNS anchor"
	case VerdictExpired:
		return "proof expired at " + validUntil.UTC().Format(time.RFC3339)
	default:
		return "proof invalid: " + strings.Join(failedKeys(n), ", ")
	}
}
