package poa

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptimeproof/poa/internal/digest"
	poaerrors "github.com/uptimeproof/poa/internal/errors"
)

// ChainValidator confirms the head's claimed predecessor exists on disk and
// hashes to the digest embedded in the pointer record. This is the
// anti-rollback check: deleting, reordering, or editing a historical
// snapshot breaks it on the next head that references it.
type ChainValidator struct {
	exportDir string
}

// NewChainValidator creates a validator rooted at the export directory.
func NewChainValidator(exportDir string) *ChainValidator {
	return &ChainValidator{exportDir: exportDir}
}

// Validate checks the head's link to its predecessor. A head with no
// previous reference is chain genesis and yields UNKNOWN, not a failure.
// The name and digest are jointly required: a matching digest under a
// different filename is still a broken link.
func (v *ChainValidator) Validate(head *HeadPointer) CheckResult {
	if head == nil {
		return CheckResult{
			ID:     CheckChainLink,
			Status: StatusUnknown,
			Detail: "head pointer unavailable, chain not assessed",
		}
	}

	prev := head.Previous
	if prev == nil || prev.File == "" {
		return CheckResult{
			ID:     CheckChainLink,
			Status: StatusUnknown,
			Detail: "no previous snapshot recorded (chain genesis)",
		}
	}

	path := filepath.Join(v.exportDir, prev.File)
	if _, err := os.Stat(path); err != nil {
		return chainBroken(fmt.Errorf("%w: previous snapshot %s missing: %v", poaerrors.ErrChainLinkBroken, prev.File, err))
	}

	sum, err := digest.File(path)
	if err != nil {
		return chainBroken(fmt.Errorf("%w: previous snapshot %s unreadable: %v", poaerrors.ErrChainLinkBroken, prev.File, err))
	}

	if !digest.Equal(sum, prev.SHA256) {
		return chainBroken(fmt.Errorf("%w: previous snapshot %s digest mismatch: computed %s, pointer claims %s", poaerrors.ErrChainLinkBroken, prev.File, sum, prev.SHA256))
	}

	return CheckResult{
		ID:     CheckChainLink,
		Status: StatusOK,
		Detail: fmt.Sprintf("previous snapshot %s matches digest %s", prev.File, prev.SHA256),
	}
}

// chainBroken builds the FAIL result for a broken link, carrying the typed
// error so callers can distinguish integrity violations with errors.Is.
func chainBroken(err error) CheckResult {
	return CheckResult{
		ID:     CheckChainLink,
		Status: StatusFail,
		Detail: err.Error(),
		Err:    err,
	}
}
