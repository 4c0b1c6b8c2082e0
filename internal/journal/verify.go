package journal

import (
	"encoding/json"
	"fmt"
	"os"
)

// ChainError reports the first entry breaking the hash chain.
type ChainError struct {
	Line   int
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Verify checks that every entry links to its predecessor and still hashes
// to its recorded value. An empty journal is valid.
func Verify(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	prev := Entry{Hash: genesisHash()}
	for i, line := range splitLines(data) {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return &ChainError{Line: i + 1, Reason: "invalid JSON: " + err.Error()}
		}
		if reason := link(prev, e); reason != "" {
			return &ChainError{Line: i + 1, Reason: reason}
		}
		prev = e
	}
	return nil
}

// link returns why e cannot follow prev, or "" when it can.
func link(prev, e Entry) string {
	switch want := computeHash(e); {
	case e.Seq != prev.Seq+1:
		return fmt.Sprintf("sequence gap: expected %d, got %d", prev.Seq+1, e.Seq)
	case e.PrevHash != prev.Hash:
		return fmt.Sprintf("prev_hash mismatch: expected %s, got %s", short(prev.Hash), short(e.PrevHash))
	case e.Hash != want:
		return fmt.Sprintf("hash mismatch: expected %s, got %s", short(want), short(e.Hash))
	}
	return ""
}

// Tail returns the last n entries from the journal, oldest first.
func Tail(path string, n int) ([]Entry, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative entry count %d", n)
	}
	entries, err := readAll(path)
	if err != nil {
		return nil, err
	}
	return entries[max(len(entries)-n, 0):], nil
}

// Stale returns, for every output whose latest successful entry carries a
// digest, that entry when the file on disk is gone or no longer matches.
// Entries are returned in journal order.
func Stale(path string) ([]Entry, error) {
	entries, err := readAll(path)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]int)
	for i, e := range entries {
		if e.Error == "" && e.Digest != "" {
			latest[e.Output] = i
		}
	}

	var stale []Entry
	for i, e := range entries {
		if j, ok := latest[e.Output]; !ok || j != i {
			continue
		}
		if digest, err := FileDigest(e.Output); err != nil || digest != e.Digest {
			stale = append(stale, e)
		}
	}
	return stale, nil
}

func readAll(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	lines := splitLines(data)
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
