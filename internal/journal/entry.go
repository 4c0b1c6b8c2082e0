package journal

import "time"

// Entry is a single journal record of a generated artifact.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	Command  string    `json:"command"`          // gen-dvc, export-pipeline
	Inputs   []string  `json:"inputs"`           // script or metadata files read
	Output   string    `json:"output"`           // generated script path
	Digest   string    `json:"digest,omitempty"` // SHA-256 of the generated script
	Steps    []string  `json:"steps,omitempty"`  // resolved step names, in order
	WorkDir  string    `json:"work_dir"`         // working directory
	Error    string    `json:"error,omitempty"`  // error message if generation failed
	Duration float64   `json:"duration_ms"`      // generation time in milliseconds
	Hash     string    `json:"hash"`             // SHA-256 of this entry (with hash field empty)
}

// Record carries the data of one generation.
type Record struct {
	Command  string
	Inputs   []string
	Output   string
	Steps    []string
	WorkDir  string
	Err      error
	Duration time.Duration
}
