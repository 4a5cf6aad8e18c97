// SPDX-License-Identifier: EPL-2.0

package tool

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Result is what a finished run reported.
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
	// OutputAdvanced is set when the expected output exists after the run
	// and its modification time is later than before it.
	OutputAdvanced bool
}

// Failed reports whether the tool wrote to stderr, which is how the wrapped
// tools signal errors regardless of their exit status.
func (r Result) Failed() bool {
	return r.Stderr != ""
}

// Runner invokes one executable from its own directory.
type Runner struct {
	Path     string
	Executor Executor
}

// NewRunner returns a Runner for the executable at path using the default
// executor.
func NewRunner(path string) *Runner {
	return &Runner{Path: path, Executor: DefaultExecutor}
}

// Available reports whether the executable exists. Bare names are looked
// up on PATH.
func (r *Runner) Available() bool {
	_, err := r.resolve()
	return err == nil
}

func (r *Runner) resolve() (string, error) {
	if r == nil || r.Path == "" {
		return "", ErrNotFound
	}
	path, err := exec.LookPath(r.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.Path, ErrNotFound)
	}
	return path, nil
}

// Run executes the tool with args and waits for it. When expectedOutput is
// not empty its modification time is compared before and after the run.
// Output streams have NUL bytes removed and surrounding space trimmed.
// A non-zero exit is reported in the Result; the error is reserved for
// runs that could not happen at all.
func (r *Runner) Run(args []string, expectedOutput string) (Result, error) {
	path, err := r.resolve()
	if err != nil {
		return Result{}, err
	}

	executor := r.Executor
	if executor == nil {
		executor = DefaultExecutor
	}

	baseline := modTime(expectedOutput)

	cmd := executor.Command(path, args...)
	cmd.SetDir(filepath.Dir(path))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, &ProcessError{Err: fmt.Errorf("starting %s: %w", filepath.Base(path), err)}
	}

	var outBuf, errBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, &outBuf, stdout)
	go drain(&wg, &errBuf, stderr)
	wg.Wait()

	res := Result{
		Stdout: Normalize(outBuf.String()),
		Stderr: Normalize(errBuf.String()),
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, &ProcessError{Err: err, Stderr: res.Stderr}
		}
		res.ExitStatus = exitErr.ExitCode()
	}

	if expectedOutput != "" {
		after := modTime(expectedOutput)
		res.OutputAdvanced = !after.IsZero() && after.After(baseline)
	}

	return res, nil
}

// Normalize strips NUL bytes and surrounding whitespace from tool output.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func drain(wg *sync.WaitGroup, dst *bytes.Buffer, src io.Reader) {
	defer wg.Done()
	_, _ = io.Copy(dst, src)
}

// modTime returns the zero time for an empty path or a missing file.
func modTime(path string) time.Time {
	if path == "" {
		return time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
