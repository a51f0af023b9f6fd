// Package jsonl exports and imports ledger records as JSONL files, one
// record per line, for git-friendly diffing and migration between
// backends. Writes are atomic via the temp-file, fsync, rename pattern.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// File names under the export directory.
const (
	EntitiesFile     = "entities.jsonl"
	ShareClassesFile = "share_classes.jsonl"
	OwnershipsFile   = "ownerships.jsonl"
)

// Export writes the record maps to JSONL files under dir, one file per
// record type, records ordered by id so repeated exports diff cleanly.
func Export(dir string, data *types.SnapshotData) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	entities := make([]json.RawMessage, 0, len(data.Entities))
	for _, id := range sortedIDs(data.Entities) {
		raw, err := json.Marshal(data.Entities[id])
		if err != nil {
			return fmt.Errorf("encoding entity %s: %w", id, err)
		}
		entities = append(entities, raw)
	}
	if err := writeJSONL(filepath.Join(dir, EntitiesFile), entities); err != nil {
		return err
	}

	classes := make([]json.RawMessage, 0, len(data.ShareClasses))
	for _, id := range sortedIDs(data.ShareClasses) {
		raw, err := json.Marshal(data.ShareClasses[id])
		if err != nil {
			return fmt.Errorf("encoding share class %s: %w", id, err)
		}
		classes = append(classes, raw)
	}
	if err := writeJSONL(filepath.Join(dir, ShareClassesFile), classes); err != nil {
		return err
	}

	ownerships := make([]json.RawMessage, 0, len(data.Ownerships))
	for _, id := range sortedIDs(data.Ownerships) {
		raw, err := json.Marshal(data.Ownerships[id])
		if err != nil {
			return fmt.Errorf("encoding ownership %s: %w", id, err)
		}
		ownerships = append(ownerships, raw)
	}
	return writeJSONL(filepath.Join(dir, OwnershipsFile), ownerships)
}

// Import reads JSONL files from dir back into record maps. Missing files
// yield empty maps; malformed lines are skipped.
func Import(dir string) (*types.SnapshotData, error) {
	data := types.NewSnapshotData()

	lines, err := readJSONL(filepath.Join(dir, EntitiesFile))
	if err != nil {
		return nil, err
	}
	for _, raw := range lines {
		var e types.Entity
		if err := json.Unmarshal(raw, &e); err != nil || e.EntityID == "" {
			continue
		}
		data.Entities[e.EntityID] = &e
	}

	lines, err = readJSONL(filepath.Join(dir, ShareClassesFile))
	if err != nil {
		return nil, err
	}
	for _, raw := range lines {
		var sc types.ShareClass
		if err := json.Unmarshal(raw, &sc); err != nil || sc.ClassID == "" {
			continue
		}
		data.ShareClasses[sc.ClassID] = &sc
	}

	lines, err = readJSONL(filepath.Join(dir, OwnershipsFile))
	if err != nil {
		return nil, err
	}
	for _, raw := range lines {
		var o types.Ownership
		if err := json.Unmarshal(raw, &o); err != nil || o.OwnershipID == "" {
			continue
		}
		data.Ownerships[o.OwnershipID] = &o
	}

	return data, nil
}

func sortedIDs[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// readJSONL reads a JSONL file and returns each non-empty, parseable
// line. A missing file is not an error.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to path using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
