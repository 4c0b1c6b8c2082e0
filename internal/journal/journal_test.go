package journal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func record(t *testing.T, l *Logger, output string) {
	t.Helper()
	err := l.Record(Record{
		Command:  "gen-dvc",
		Inputs:   []string{"scripts/step.py"},
		Output:   output,
		WorkDir:  "/tmp",
		Duration: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRecordAndVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		err := logger.Record(Record{
			Command:  "export-pipeline",
			Inputs:   []string{"dvc/step5.dvc"},
			Output:   filepath.Join(dir, "pipeline.sh"),
			Steps:    []string{"step1.dvc", "step5.dvc"},
			WorkDir:  dir,
			Duration: time.Duration(i) * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("record entry %d: %v", i, err)
		}
	}

	if err := Verify(path); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestRecordDigestAndError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	out := filepath.Join(dir, "step_dvc")
	if err := os.WriteFile(out, []byte("#!/bin/bash\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	record(t, logger, out)
	if err := logger.Record(Record{Command: "gen-dvc", Output: out, Err: errors.New("boom")}); err != nil {
		t.Fatal(err)
	}

	entries, err := Tail(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := FileDigest(out)
	if entries[0].Digest != want || want == "" {
		t.Errorf("digest = %q, want %q", entries[0].Digest, want)
	}
	if entries[1].Error != "boom" || entries[1].Digest != "" {
		t.Errorf("unexpected failed entry %+v", entries[1])
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		record(t, logger, "/tmp/out")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := splitLines(data)
	// Change the output of the second entry without touching its hash.
	lines[1] = []byte(strings.Replace(string(lines[1]), `"output":"/tmp/out"`, `"output":"/tmp/evil"`, 1))
	var tampered []byte
	for _, line := range lines {
		tampered = append(tampered, line...)
		tampered = append(tampered, '\n')
	}
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatal(err)
	}

	if err := Verify(path); err == nil {
		t.Fatal("expected verify to detect tampering")
	}
}

func TestVerifyDetectsSequenceGap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		record(t, logger, "/tmp/out")
	}

	// Delete the middle line (line 3 of 5).
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := splitLines(data)
	remaining := append(lines[:2], lines[3:]...)
	var newData []byte
	for _, line := range remaining {
		newData = append(newData, line...)
		newData = append(newData, '\n')
	}
	if err := os.WriteFile(path, newData, 0600); err != nil {
		t.Fatal(err)
	}

	if err := Verify(path); err == nil {
		t.Fatal("expected verify to detect sequence gap")
	}
}

func TestVerifyEmptyJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	if err := os.WriteFile(path, []byte{}, 0600); err != nil {
		t.Fatal(err)
	}
	if err := Verify(path); err != nil {
		t.Fatalf("empty journal should be valid: %v", err)
	}
}

func TestLoggerResumesChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")

	logger1, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	record(t, logger1, "/tmp/first")
	record(t, logger1, "/tmp/second")

	// Create a new logger (simulating process restart).
	logger2, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	record(t, logger2, "/tmp/third")

	if err := Verify(path); err != nil {
		t.Fatalf("chain should be valid after restart: %v", err)
	}

	entries, err := Tail(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[2].Seq != 3 || entries[2].Output != "/tmp/third" {
		t.Errorf("unexpected last entry %+v", entries[2])
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	if err := l.Record(Record{Command: "gen-dvc"}); err != nil {
		t.Fatal(err)
	}
	if l.Path() != "" {
		t.Errorf("expected empty path, got %q", l.Path())
	}
}

func TestStale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	kept := filepath.Join(dir, "kept_dvc")
	edited := filepath.Join(dir, "edited_dvc")
	removed := filepath.Join(dir, "removed_dvc")
	for _, p := range []string{kept, edited, removed} {
		if err := os.WriteFile(p, []byte("#!/bin/bash\n"+p+"\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{kept, edited, removed} {
		record(t, logger, p)
	}

	if err := os.WriteFile(edited, []byte("changed by hand\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(removed); err != nil {
		t.Fatal(err)
	}

	stale, err := Stale(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 2 || stale[0].Output != edited || stale[1].Output != removed {
		t.Fatalf("unexpected stale entries %+v", stale)
	}
}

func TestTailBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	record(t, logger, "/tmp/only")

	if _, err := Tail(path, -1); err == nil {
		t.Error("expected an error for a negative count")
	}
	entries, err := Tail(path, 0)
	if err != nil || len(entries) != 0 {
		t.Errorf("Tail(0) = %v, %v", entries, err)
	}
	entries, err = Tail(path, 5)
	if err != nil || len(entries) != 1 {
		t.Errorf("Tail(5) = %v, %v", entries, err)
	}
}

func TestFailedAppendKeepsChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	// A directory in place of the journal makes the append fail.
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := logger.Record(Record{Command: "gen-dvc", Output: "/tmp/out"}); err == nil {
		t.Fatal("expected append to fail")
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	record(t, logger, "/tmp/out")
	if err := Verify(path); err != nil {
		t.Fatalf("chain broken after failed append: %v", err)
	}
	entries, err := Tail(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Seq != 1 {
		t.Errorf("Seq = %d, want 1", entries[0].Seq)
	}
}

func TestVerifyReportsLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var chainErr *ChainError
	if err := Verify(path); !errors.As(err, &chainErr) || chainErr.Line != 1 {
		t.Fatalf("expected chain error on line 1, got %v", err)
	}
}
