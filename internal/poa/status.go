package poa

// Status is the outcome of a single verification check.
type Status string

const (
	StatusOK      Status = "OK"      // Check passed
	StatusWarn    Status = "WARN"    // Acceptable, but not a strict pass
	StatusFail    Status = "FAIL"    // Check failed
	StatusUnknown Status = "UNKNOWN" // Check could not be assessed (no claim exists)
)

// Check identifiers. These ids are a compatibility contract: new ids may be
// added, existing ones are never renamed.
const (
	CheckHeadLatestJSON     = "head_latest_json"
	CheckChainLink          = "chain_link"
	CheckDNSMatchedFileHash = "dns_matched_file_hash"
	CheckDNSMatchesHead     = "dns_matches_head"
	CheckNotExpired         = "not_expired"
)

// CheckResult is one named check outcome. Detail is human-readable and
// never machine-parsed.
type CheckResult struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Detail string `json:"detail"`

	// Err carries the typed failure for errors.Is, when one exists.
	// Never serialized; the public surface reports status and detail only.
	Err error `json:"-"`
}
