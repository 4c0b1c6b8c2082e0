// Package journal keeps an append-only, hash-chained JSONL record of every
// script mlvtools generates.
package journal

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const genesisInput = "mlvtools-genesis"

// Logger is an append-only, hash-chained journal writer. A nil *Logger
// discards every record.
type Logger struct {
	mu       sync.Mutex
	path     string
	seq      uint64
	prevHash string
}

// NewLogger opens or creates a journal at the given path.
// It reads the last entry to resume the hash chain.
func NewLogger(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	l := &Logger{
		path:     path,
		prevHash: genesisHash(),
	}

	// Read existing journal to find last entry.
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		lines := splitLines(data)
		if len(lines) > 0 {
			var last Entry
			if err := json.Unmarshal(lines[len(lines)-1], &last); err == nil {
				l.seq = last.Seq
				l.prevHash = last.Hash
			}
		}
	}

	return l, nil
}

// Record appends an entry for r. The digest of r.Output is taken when the
// generation succeeded.
func (l *Logger) Record(r Record) error {
	if l == nil {
		return nil
	}

	entry := Entry{
		Command:  r.Command,
		Inputs:   r.Inputs,
		Output:   r.Output,
		Steps:    r.Steps,
		WorkDir:  r.WorkDir,
		Duration: float64(r.Duration.Microseconds()) / 1000.0,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	} else if digest, err := FileDigest(r.Output); err == nil {
		entry.Digest = digest
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Seq = l.seq + 1
	entry.Time = time.Now().UTC()
	entry.PrevHash = l.prevHash
	entry.Hash = computeHash(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}

	// The chain only advances once the entry is on disk.
	l.seq = entry.Seq
	l.prevHash = entry.Hash
	return nil
}

// Path returns the journal file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// FileDigest returns the hex SHA-256 of the file at path.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = "" // hash is computed with this field empty
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
