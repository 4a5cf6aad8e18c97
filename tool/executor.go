// SPDX-License-Identifier: EPL-2.0

package tool

import (
	"io"
	"os/exec"
)

// Executor abstracts the creation of commands
type Executor interface {
	// Command creates a new command instance
	Command(name string, args ...string) Commander
}

// Commander abstracts the exec.Cmd functionality
type Commander interface {
	// Start starts the command but doesn't wait for it to complete
	Start() error

	// Wait waits for the command to exit and returns any error
	Wait() error

	// StdoutPipe returns a pipe connected to stdout
	StdoutPipe() (io.ReadCloser, error)

	// StderrPipe returns a pipe connected to stderr
	StderrPipe() (io.ReadCloser, error)

	// SetDir sets the working directory
	SetDir(dir string)
}

// ExecExecutor runs real processes through os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Command(name string, args ...string) Commander {
	return &execCommander{cmd: exec.Command(name, args...)}
}

type execCommander struct {
	cmd *exec.Cmd
}

func (c *execCommander) Start() error                       { return c.cmd.Start() }
func (c *execCommander) Wait() error                        { return c.cmd.Wait() }
func (c *execCommander) StdoutPipe() (io.ReadCloser, error) { return c.cmd.StdoutPipe() }
func (c *execCommander) StderrPipe() (io.ReadCloser, error) { return c.cmd.StderrPipe() }
func (c *execCommander) SetDir(dir string)                  { c.cmd.Dir = dir }

// DefaultExecutor is the standard command executor
var DefaultExecutor Executor = ExecExecutor{}
