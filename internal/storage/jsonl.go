package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ManifestName is the file name of the run log kept next to file outputs.
const ManifestName = "runs.jsonl"

// ManifestEntry is one line of the run log: a run plus the files it wrote
// and the counts it reported.
type ManifestEntry struct {
	Run
	Outputs map[string]string `json:"outputs"` // output name -> path
	Counts  map[string]int    `json:"counts"`
}

// ReadManifest reads all entries from a run log.
func ReadManifest(path string) ([]ManifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing log means no runs yet
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	var entries []ManifestEntry
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e ManifestEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}

	return entries, nil
}

// AppendManifest adds an entry to the end of a run log.
func AppendManifest(path string, e ManifestEntry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening run log for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}
