package config

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// WorkDirectory returns the top directory of the git repository containing
// dir. It is the default working directory of every command.
func WorkDirectory(ctx context.Context, dir string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = &gitError{err: err, stderr: msg}
		}
		return "", toolerr.Wrap(toolerr.Config, err,
			"can not run 'git rev-parse' to get top directory, input files must belong to a git repository")
	}
	return strings.TrimRight(string(out), "\n"), nil
}

type gitError struct {
	err    error
	stderr string
}

func (e *gitError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *gitError) Unwrap() error { return e.err }
