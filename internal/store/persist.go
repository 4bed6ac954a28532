package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cklxx/scoutqueue/internal/task"
)

// ReadState parses the state.json document in the given run directory.
// encoding/json already sorts map keys when marshaling, so no
// normalization is required on read.
func ReadState(dataDir, runDirName string) (*ProcessState, error) {
	path := StatePath(dataDir, runDirName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading state %q: %w", path, err)
	}

	var state ProcessState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("store: parsing state %q: %w", path, err)
	}
	return &state, nil
}

// WriteState persists state to the run directory's state.json,
// crash-safely: it writes to a temp file in the same directory and
// renames it over the final path, so a crash mid-write never leaves a
// truncated state.json behind (spec.md §9, "Persistence atomicity").
// encoding/json.Marshal sorts map keys, which satisfies spec.md §6's
// "keys sorted lexicographically at write time" without extra work.
func WriteState(dataDir, runDirName string, state *ProcessState) error {
	path := StatePath(dataDir, runDirName)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("store: creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: writing temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: syncing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: closing temp state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: renaming temp state file into place: %w", err)
	}
	return nil
}

// AppendOutput appends records to the line-delimited output file at
// path, one JSON object per line, creating the file if it does not yet
// exist. Consumers of these files must tolerate a trailing incomplete
// line (spec.md §9); this writer itself only ever appends complete
// lines.
func AppendOutput(path string, records []task.Record) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: opening output file %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("store: encoding output record for task %q: %w", rec.TaskID, err)
		}
	}
	return w.Flush()
}
