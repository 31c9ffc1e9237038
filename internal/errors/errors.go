// Package errors provides sentinel errors for the PoA verifier.
package errors

import "errors"

// Head pointer errors
var (
	// ErrHeadUnreadable is returned when the pointer record cannot be read or parsed.
	ErrHeadUnreadable = errors.New("head pointer unreadable")

	// ErrHeadFileMissing is returned when the current snapshot file named by the
	// pointer record does not exist on disk.
	ErrHeadFileMissing = errors.New("head snapshot file missing")
)

// DNS anchor errors
var (
	// ErrDNSResolution is returned when the TXT record cannot be resolved.
	// Transient - expected to self-heal on the next poll.
	ErrDNSResolution = errors.New("dns anchor resolution failed")

	// ErrDNSRecordMalformed is returned when a TXT record is present but carries
	// none of the recognized anchor fields.
	ErrDNSRecordMalformed = errors.New("dns anchor record malformed")
)

// Chain errors
var (
	// ErrChainLinkBroken is returned when the previous snapshot is missing or its
	// recomputed digest does not match the pointer record's claim.
	ErrChainLinkBroken = errors.New("chain link broken")
)
