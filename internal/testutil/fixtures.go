// Package testutil provides filesystem fixtures for verifier tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/uptimeproof/poa/internal/digest"
	"github.com/uptimeproof/poa/internal/poa"
)

// ExportDir is a temp export directory holding snapshot files and a pointer
// record, torn down with the test.
type ExportDir struct {
	t   *testing.T
	Dir string
}

// NewExportDir creates an empty export directory.
func NewExportDir(t *testing.T) *ExportDir {
	t.Helper()
	return &ExportDir{t: t, Dir: t.TempDir()}
}

// WriteSnapshot writes a snapshot file and returns its digest.
func (e *ExportDir) WriteSnapshot(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("write snapshot %s: %v", name, err)
	}
	return digest.Bytes([]byte(content))
}

// Corrupt overwrites an existing snapshot with different bytes.
func (e *ExportDir) Corrupt(name string) {
	e.t.Helper()
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, []byte("tampered"), 0600); err != nil {
		e.t.Fatalf("corrupt snapshot %s: %v", name, err)
	}
}

// Remove deletes a snapshot file.
func (e *ExportDir) Remove(name string) {
	e.t.Helper()
	if err := os.Remove(filepath.Join(e.Dir, name)); err != nil {
		e.t.Fatalf("remove snapshot %s: %v", name, err)
	}
}

// WriteHead writes the latest.json pointer record.
func (e *ExportDir) WriteHead(head poa.HeadPointer) {
	e.t.Helper()
	data, err := json.Marshal(head)
	if err != nil {
		e.t.Fatalf("marshal head pointer: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, poa.PointerFile), data, 0600); err != nil {
		e.t.Fatalf("write head pointer: %v", err)
	}
}

// WriteHeadRaw writes arbitrary bytes as the pointer record, for unreadable
// and malformed pointer cases.
func (e *ExportDir) WriteHeadRaw(data []byte) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.Dir, poa.PointerFile), data, 0600); err != nil {
		e.t.Fatalf("write head pointer: %v", err)
	}
}

// Chain writes a two-snapshot chain (previous and head) plus the pointer
// record, returning the written pointer. ts is the head timestamp.
func (e *ExportDir) Chain(ts time.Time) poa.HeadPointer {
	e.t.Helper()

	prevDigest := e.WriteSnapshot("heartbeats_0004.json", `{"seq":4}`)
	headDigest := e.WriteSnapshot("heartbeats_0005.json", `{"seq":5}`)

	head := poa.HeadPointer{
		File:     "heartbeats_0005.json",
		SHA256:   headDigest,
		TS:       ts,
		Sequence: 5,
		MTime:    ts.Unix(),
		Previous: &poa.SnapshotRef{
			File:   "heartbeats_0004.json",
			SHA256: prevDigest,
		},
	}
	e.WriteHead(head)
	return head
}
