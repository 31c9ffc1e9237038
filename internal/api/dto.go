package api

import (
	"time"

	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/poa"
)

// Schema identifiers version the response contracts. Fields may be added
// within a version; removal or rename requires a new identifier.
const (
	SchemaVerify = "uptimeproof:poa-verify:v1"
	SchemaStatus = "uptimeproof:poa-status:v1"
)

// HeadDTO mirrors the pointer record in the public response.
type HeadDTO struct {
	File     string `json:"file"`
	SHA256   string `json:"sha256"`
	TS       string `json:"ts"`
	Sequence uint64 `json:"sequence"`
	MTime    int64  `json:"mtime"`
}

// CheckDTO is one detailed check outcome.
type CheckDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// VerificationDTO carries the canonical verdict and the normalized booleans,
// the stable machine integration surface.
type VerificationDTO struct {
	Verdict string               `json:"verdict"`
	Reason  string               `json:"reason"`
	Checks  poa.NormalizedChecks `json:"checks"`
}

// SnapshotRefDTO names one content-addressed snapshot.
type SnapshotRefDTO struct {
	File   string `json:"file"`
	SHA256 string `json:"sha256"`
}

// ProofDTO summarizes the time-bound claim being verified.
type ProofDTO struct {
	TS                 string         `json:"ts"`
	Head               SnapshotRefDTO `json:"head"`
	ProofWindowSeconds int            `json:"proof_window_seconds"`
	ValidUntilUTC      string         `json:"valid_until_utc"`
}

// AnchorDTO is the DNS witness claim as resolved.
type AnchorDTO struct {
	DNS SnapshotRefDTO `json:"dns"`
}

// VerifyResponseDTO is the full verification document.
type VerifyResponseDTO struct {
	Schema    string          `json:"schema"`
	TS        string          `json:"ts"`
	Verdict   string          `json:"verdict"`
	Message   string          `json:"message"`
	Service   string          `json:"service"`
	Links     []string        `json:"links"`
	Head      *HeadDTO        `json:"head"`
	DNSAnchor string          `json:"dns_anchor"`
	Chain     string          `json:"chain"`
	Checks    []CheckDTO      `json:"checks"`
	NowUTC    string          `json:"now_utc"`
	Verify    VerificationDTO `json:"verification"`
	Proof     ProofDTO        `json:"proof"`
	Anchor    AnchorDTO       `json:"anchor"`
}

// StatusDTO is the condensed status projection.
type StatusDTO struct {
	Schema  string `json:"schema"`
	Service string `json:"service"`
	Verdict string `json:"verdict"`
	Status  string `json:"status"`
	Message string `json:"message"`
	NowUTC  string `json:"now_utc"`
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// BuildVerifyResponse projects one verification result into the public
// document. The CLI json mode emits the same document as the HTTP endpoint.
func BuildVerifyResponse(cfg *config.Config, res *poa.Result) VerifyResponseDTO {
	links := cfg.Links
	if links == nil {
		// links is part of the fixed field set; an unconfigured value is an
		// empty list, not an absent key.
		links = []string{}
	}

	out := VerifyResponseDTO{
		Schema:  SchemaVerify,
		Verdict: res.Verdict,
		Message: res.Message,
		Service: cfg.Service,
		Links:   links,
		NowUTC:  rfc3339(res.Now),
		Checks:  make([]CheckDTO, 0, len(res.Checks)),
		Verify: VerificationDTO{
			Verdict: string(res.Canonical),
			Reason:  res.Reason,
			Checks:  res.Normalized,
		},
		Proof: ProofDTO{
			ProofWindowSeconds: res.ProofWindowSeconds,
			ValidUntilUTC:      rfc3339(res.ValidUntil),
		},
	}

	for _, c := range res.Checks {
		out.Checks = append(out.Checks, CheckDTO{
			ID:     c.ID,
			Status: string(c.Status),
			Detail: c.Detail,
		})
		if c.ID == poa.CheckChainLink {
			out.Chain = string(c.Status)
		}
	}

	if res.Head != nil {
		out.TS = rfc3339(res.Head.TS)
		out.Proof.TS = rfc3339(res.Head.TS)
		out.Head = &HeadDTO{
			File:     res.Head.File,
			SHA256:   res.Head.SHA256,
			TS:       rfc3339(res.Head.TS),
			Sequence: res.Head.Sequence,
			MTime:    res.Head.MTime,
		}
		out.Proof.Head = SnapshotRefDTO{File: res.Head.File, SHA256: res.Head.SHA256}
	}

	if res.Anchor != nil {
		out.DNSAnchor = res.Anchor.Raw
		out.Anchor.DNS = SnapshotRefDTO{File: res.Anchor.File, SHA256: res.Anchor.SHA256}
	}

	return out
}

// buildStatus projects the same result into the condensed summary.
func buildStatus(cfg *config.Config, res *poa.Result) StatusDTO {
	return StatusDTO{
		Schema:  SchemaStatus,
		Service: cfg.Service,
		Verdict: res.Verdict,
		Status:  string(res.Canonical),
		Message: res.Message,
		NowUTC:  rfc3339(res.Now),
	}
}
