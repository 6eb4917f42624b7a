package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/user/pc_scorer_go/internal/scoring"
)

// Current schema version - increment when the Results layout changes
const snapshotSchemaVersion uint16 = 1

// Snapshot is the on-disk form of a computation pass.
type Snapshot struct {
	Schema  uint16
	Results *scoring.Results
}

func WriteSnapshot(w io.Writer, res *scoring.Results) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&Snapshot{Schema: snapshotSchemaVersion, Results: res}); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

func ReadSnapshot(r io.Reader) (*scoring.Results, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", snap.Schema, snapshotSchemaVersion)
	}
	if snap.Results == nil {
		return nil, fmt.Errorf("snapshot holds no results")
	}
	return snap.Results, nil
}

// SaveSnapshot writes the snapshot next to path and renames it into place.
func SaveSnapshot(path string, res *scoring.Results) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := WriteSnapshot(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func LoadSnapshot(path string) (*scoring.Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// Fingerprint is the encoded snapshot of res. Two passes over the same
// inputs have equal fingerprints.
func Fingerprint(res *scoring.Results) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
