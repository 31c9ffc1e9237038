// Package dnsanchor fetches and parses the DNS-published availability anchor.
package dnsanchor

import (
	"strings"

	"github.com/uptimeproof/poa/internal/digest"
)

// Anchor is the operator-independent witness claim published as a TXT record.
// Fields left empty mean the record did not carry them; downstream checks
// fail naturally against an empty anchor instead of the parser throwing.
type Anchor struct {
	File   string `json:"file"`
	SHA256 string `json:"sha256"`
	TS     string `json:"ts,omitempty"`

	// Raw is the merged TXT body as resolved.
	Raw string `json:"raw,omitempty"`

	// Server is the nameserver that answered, or "SYSTEM_RESOLVER".
	Server string `json:"server,omitempty"`
}

// Complete reports whether the anchor carries both fields required for
// reconciliation against the local chain.
func (a *Anchor) Complete() bool {
	return a != nil && a.File != "" && a.SHA256 != ""
}

// Parse parses a TXT record body of semicolon-delimited KEY=VALUE pairs.
// Recognized keys are TS, SHA256 and FILE (case-sensitive); unknown keys are
// ignored for forward compatibility. A SHA256 value that is not 64 hex
// characters is discarded.
func Parse(txt string) *Anchor {
	a := &Anchor{Raw: strings.TrimSpace(strings.Trim(strings.TrimSpace(txt), `"`))}

	for _, field := range strings.Split(a.Raw, ";") {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "TS":
			a.TS = value
		case "SHA256":
			if digest.IsHex256(value) {
				a.SHA256 = strings.ToLower(value)
			}
		case "FILE":
			a.File = value
		}
	}

	return a
}

// MergeTXT joins a multi-string TXT answer into one record body. DNS splits
// long TXT values into quoted 255-byte strings; the anchor is their
// concatenation.
func MergeTXT(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, ""))
}
