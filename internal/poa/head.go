package poa

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	poaerrors "github.com/uptimeproof/poa/internal/errors"
)

// PointerFile is the on-disk name of the head pointer record.
const PointerFile = "latest.json"

// SnapshotRef names a content-addressed snapshot file.
type SnapshotRef struct {
	File   string `json:"file"`
	SHA256 string `json:"sha256"`
}

// HeadPointer is the parsed pointer record declaring the current head
// snapshot and, except at chain genesis, its predecessor.
type HeadPointer struct {
	File     string       `json:"file"`
	SHA256   string       `json:"sha256"`
	TS       time.Time    `json:"ts"`
	Sequence uint64       `json:"sequence"`
	MTime    int64        `json:"mtime"`
	Previous *SnapshotRef `json:"previous,omitempty"`
}

// HeadResolver locates the current head snapshot from the pointer record.
type HeadResolver struct {
	exportDir string
}

// NewHeadResolver creates a resolver rooted at the export directory.
func NewHeadResolver(exportDir string) *HeadResolver {
	return &HeadResolver{exportDir: exportDir}
}

// SnapshotPath returns the on-disk path of a named snapshot file.
func (r *HeadResolver) SnapshotPath(name string) string {
	return filepath.Join(r.exportDir, name)
}

// Resolve re-reads the pointer record and returns the current head. The
// record is never cached across calls: the exporter may rotate the head at
// any time and the engine must always see the latest pointer state.
func (r *HeadResolver) Resolve() (*HeadPointer, error) {
	path := filepath.Join(r.exportDir, PointerFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", poaerrors.ErrHeadUnreadable, path, err)
	}

	var head HeadPointer
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", poaerrors.ErrHeadUnreadable, path, err)
	}
	if head.File == "" || head.SHA256 == "" {
		return nil, fmt.Errorf("%w: %s: record names no current snapshot", poaerrors.ErrHeadUnreadable, path)
	}

	info, err := os.Stat(r.SnapshotPath(head.File))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", poaerrors.ErrHeadFileMissing, head.File, err)
	}
	if head.MTime == 0 {
		head.MTime = info.ModTime().Unix()
	}

	return &head, nil
}
