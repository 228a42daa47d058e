package loom

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kolkov/loomgo/internal/loom/rt/path"
)

// loadCheckpoint reads a gob-encoded path.Snapshot from file, returning a
// zero Snapshot (an empty Path) if the file does not exist yet — the
// first run of a search with a checkpoint configured has nothing to
// resume from.
func loadCheckpoint(file string) (path.Snapshot, error) {
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return path.Snapshot{}, nil
	}
	if err != nil {
		return path.Snapshot{}, fmt.Errorf("loom: opening checkpoint %q: %w", file, err)
	}
	defer f.Close()

	var snap path.Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return path.Snapshot{}, fmt.Errorf("loom: decoding checkpoint %q: %w", file, err)
	}
	return snap, nil
}

// saveCheckpoint overwrites file with snap's current frontier,
// gob-encoded. It writes to a temporary file first and renames it into
// place so a crash mid-write never corrupts the last good checkpoint.
func saveCheckpoint(file string, snap path.Snapshot) error {
	tmp := file + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("loom: creating checkpoint %q: %w", tmp, err)
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("loom: encoding checkpoint %q: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("loom: closing checkpoint %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, file); err != nil {
		return fmt.Errorf("loom: renaming checkpoint into place %q: %w", file, err)
	}
	return nil
}
