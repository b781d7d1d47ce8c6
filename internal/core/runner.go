package core

import (
	"context"
	"os/exec"
	"strings"
)

// Runner abstracts process execution so tests can replace it.
type Runner interface {
	Run(cmd *exec.Cmd) error
	CombinedOutput(cmd *exec.Cmd) ([]byte, error)
}

// RealRunner runs commands on the local machine.
type RealRunner struct{}

func (r *RealRunner) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (r *RealRunner) CombinedOutput(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}

// CommandRunner is the global runner used by RunCommand.
var CommandRunner Runner = &RealRunner{}

// RunCommand executes a command and returns its trimmed combined output.
func RunCommand(name string, args ...string) (string, error) {
	out, err := CommandRunner.CombinedOutput(exec.Command(name, args...))
	return strings.TrimSpace(string(out)), err
}

// RunCommandContext is RunCommand bound to ctx; the process is killed when
// ctx is done.
func RunCommandContext(ctx context.Context, name string, args ...string) (string, error) {
	out, err := CommandRunner.CombinedOutput(exec.CommandContext(ctx, name, args...))
	return strings.TrimSpace(string(out)), err
}
