package poa_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/dnsanchor"
	"github.com/uptimeproof/poa/internal/poa"
	"github.com/uptimeproof/poa/internal/testutil"
)

type fakeFetcher struct {
	anchor *dnsanchor.Anchor
	err    error
}

func (f fakeFetcher) Fetch(_ context.Context) (*dnsanchor.Anchor, error) {
	return f.anchor, f.err
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func testConfig(exportDir string) *config.Config {
	cfg := config.Default()
	cfg.ExportDir = exportDir
	return cfg
}

func anchorFor(file, sha256 string) *dnsanchor.Anchor {
	return &dnsanchor.Anchor{
		File:   file,
		SHA256: sha256,
		Raw:    "TS=0;SHA256=" + sha256 + ";FILE=" + file,
		Server: "ns1.example.net",
	}
}

// Fresh chain, anchor at the current head, clock inside the window.
func TestVerifyAllChecksPass(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	head := exports.Chain(ts)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.File, head.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictValid, res.Canonical)
	assert.Equal(t, poa.CoarseOK, res.Verdict)
	assert.Equal(t, poa.NormalizedChecks{
		HeadLatestJSON:     true,
		DNSMatchesHead:     true,
		DNSLagOK:           true,
		DNSMatchedFileHash: true,
		ChainOK:            true,
		NotExpired:         true,
	}, res.Normalized)
	require.Len(t, res.Checks, 5)
	assert.True(t, res.ValidUntil.Equal(ts.Add(5*time.Minute)))
}

// Anchor still pointing at the predecessor: WARN, not FAIL.
func TestVerifyAnchorLagsOneSnapshot(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.Previous.File, head.Previous.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictValid, res.Canonical, "single-step lag is tolerated")
	assert.Equal(t, poa.CoarseOK, res.Verdict)
	assert.False(t, res.Normalized.DNSMatchesHead)
	assert.True(t, res.Normalized.DNSLagOK, "lag tolerance keeps dns_lag_ok true")
	assert.True(t, res.Normalized.DNSMatchedFileHash)

	var headMatch poa.CheckResult
	for _, c := range res.Checks {
		if c.ID == poa.CheckDNSMatchesHead {
			headMatch = c
		}
	}
	assert.Equal(t, poa.StatusWarn, headMatch.Status, "lag surfaces as WARN in the detailed checks")
}

// Clock one second past validUntil: expiry overrides everything else.
func TestVerifyExpiredOverridesPassingChecks(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	head := exports.Chain(ts)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.File, head.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(5*time.Minute + time.Second)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictExpired, res.Canonical)
	assert.Equal(t, poa.CoarseFail, res.Verdict)
	assert.False(t, res.Normalized.NotExpired)
	assert.True(t, res.Normalized.ChainOK, "expiry does not contaminate other checks")
	assert.True(t, res.Normalized.DNSMatchesHead)
}

// Expiry wins even when other checks also fail.
func TestVerifyExpiryBeatsOtherFailures(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	head := exports.Chain(ts)
	exports.Corrupt(head.Previous.File)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{err: errors.New("txt lookup timed out")},
		poa.WithClock(fakeClock{now: ts.Add(time.Hour)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictExpired, res.Canonical, "expiry is the hard override")
	assert.False(t, res.Normalized.ChainOK)
	assert.False(t, res.Normalized.DNSLagOK)
}

// Head file rewritten on disk after publish: pointer and DNS still carry the
// pre-tamper digest, but the bytes no longer hash to it. The anchor must be
// compared against recomputed digests, so this cannot verify.
func TestVerifyTamperedHeadFile(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)
	exports.Corrupt(head.File)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.File, head.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical, "a tampered head file must not verify")
	assert.Equal(t, poa.CoarseFail, res.Verdict)
	assert.False(t, res.Normalized.DNSMatchedFileHash, "anchor digest must be compared against recomputed file bytes")
	assert.False(t, res.Normalized.DNSMatchesHead)
	assert.False(t, res.Normalized.DNSLagOK)
	assert.True(t, res.Normalized.ChainOK, "the intact predecessor link is a separate question")
}

// Previous file rewritten while the anchor still points at it: the lag
// tolerance must not accept a predecessor whose bytes no longer match.
func TestVerifyTamperedPreviousBreaksLagTolerance(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)
	exports.Corrupt(head.Previous.File)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.Previous.File, head.Previous.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical)
	assert.False(t, res.Normalized.DNSLagOK)
	assert.False(t, res.Normalized.DNSMatchedFileHash)
	assert.False(t, res.Normalized.ChainOK)
}

// Deleted predecessor: chain FAIL flips only chain_ok and the verdict.
func TestVerifyBrokenChain(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)
	exports.Remove(head.Previous.File)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.File, head.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical)
	assert.Equal(t, poa.CoarseFail, res.Verdict)
	assert.False(t, res.Normalized.ChainOK)
	assert.True(t, res.Normalized.HeadLatestJSON, "head check is independent of the chain")
	assert.True(t, res.Normalized.DNSMatchesHead)
	assert.True(t, res.Normalized.NotExpired)
	assert.Contains(t, res.Reason, "chain_ok")
}

// A mutated predecessor flips chain_ok and nothing else.
func TestVerifyMutationFlipsOnlyChainCheck(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)

	fetcher := fakeFetcher{anchor: anchorFor(head.File, head.SHA256)}
	clock := poa.WithClock(fakeClock{now: ts.Add(time.Minute)})

	before := poa.NewVerifier(testConfig(exports.Dir), fetcher, clock).Verify(context.Background())
	exports.Corrupt(head.Previous.File)
	after := poa.NewVerifier(testConfig(exports.Dir), fetcher, clock).Verify(context.Background())

	assert.True(t, before.Normalized.ChainOK)
	assert.False(t, after.Normalized.ChainOK)

	before.Normalized.ChainOK = after.Normalized.ChainOK
	assert.Equal(t, before.Normalized, after.Normalized, "only chain_ok may differ")
}

// DNS down entirely: dns checks fail, verdict INVALID, engine does not error.
func TestVerifyDNSUnavailable(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	exports.Chain(ts)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{err: errors.New("no authoritative server answered")},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical)
	assert.False(t, res.Normalized.DNSLagOK)
	assert.False(t, res.Normalized.DNSMatchesHead)
	assert.False(t, res.Normalized.DNSMatchedFileHash)
	assert.True(t, res.Normalized.ChainOK, "local checks proceed without DNS")
	assert.Nil(t, res.Anchor)
}

// Anchor matching neither head nor predecessor is a hard mismatch.
func TestVerifyAnchorMismatch(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	exports.Chain(ts)

	stale := anchorFor("heartbeats_0001.json",
		"deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: stale},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical)
	assert.False(t, res.Normalized.DNSLagOK, "anchor older than one step is a failure")
	assert.False(t, res.Normalized.DNSMatchedFileHash)
}

// Unreadable head yields INVALID, never EXPIRED: with no timestamp there is
// nothing to expire.
func TestVerifyUnreadableHeadIsInvalidNotExpired(t *testing.T) {
	exports := testutil.NewExportDir(t)
	exports.WriteHeadRaw([]byte("{broken"))

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{err: errors.New("unreachable")},
		poa.WithClock(fakeClock{now: time.Now().UTC()}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictInvalid, res.Canonical)
	assert.False(t, res.Normalized.HeadLatestJSON)
	assert.False(t, res.Normalized.NotExpired)
	assert.True(t, res.Normalized.ChainOK, "chain is UNKNOWN without a head, which still counts as passing")
	assert.Nil(t, res.Head)
	assert.True(t, res.ValidUntil.IsZero())
}

// Genesis head with a matching anchor is fully VALID.
func TestVerifyGenesisIsValid(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	sum := exports.WriteSnapshot("heartbeats_0001.json", `{"seq":1}`)
	exports.WriteHead(poa.HeadPointer{
		File:     "heartbeats_0001.json",
		SHA256:   sum,
		TS:       ts,
		Sequence: 1,
	})

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor("heartbeats_0001.json", sum)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	res := v.Verify(context.Background())

	assert.Equal(t, poa.VerdictValid, res.Canonical, "genesis must not be penalized for having no predecessor")
	assert.True(t, res.Normalized.ChainOK)
}

// The normalized key set is a stability contract for integrators.
func TestNormalizedChecksJSONKeys(t *testing.T) {
	data, err := json.Marshal(poa.NormalizedChecks{})
	require.NoError(t, err)

	var keys map[string]bool
	require.NoError(t, json.Unmarshal(data, &keys))

	for _, k := range []string{
		"head_latest_json", "dns_matches_head", "dns_lag_ok",
		"dns_matched_file_hash", "chain_ok", "not_expired",
	} {
		_, ok := keys[k]
		assert.True(t, ok, "normalized key %s must always be present", k)
	}
	assert.Len(t, keys, 6)
}

// Two verifications over unchanged inputs agree. The verifier holds no state,
// so repeated calls are pure functions of disk and DNS.
func TestVerifyIsDeterministic(t *testing.T) {
	exports := testutil.NewExportDir(t)
	ts := time.Now().UTC()
	head := exports.Chain(ts)

	v := poa.NewVerifier(testConfig(exports.Dir),
		fakeFetcher{anchor: anchorFor(head.File, head.SHA256)},
		poa.WithClock(fakeClock{now: ts.Add(time.Minute)}))

	first := v.Verify(context.Background())
	second := v.Verify(context.Background())

	assert.Equal(t, first.Normalized, second.Normalized)
	assert.Equal(t, first.Canonical, second.Canonical)
	assert.Equal(t, first.Reason, second.Reason)
}
