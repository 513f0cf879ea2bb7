package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ToolOutput is the captured result of one external tool invocation.
type ToolOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ToolResults holds the validator and linter streams for one run. Lint stays
// zero-valued when validation fails and linting is skipped.
type ToolResults struct {
	Validate ToolOutput
	Lint     ToolOutput
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (ToolOutput, error)
}

// ExecRunner implements CommandRunner by invoking the binary directly.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (ToolOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	out := ToolOutput{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			// Could not start or complete the process at all.
			out.ExitCode = -1
			return out, fmt.Errorf("exec %s: %w", name, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}
	return out, nil
}

// ToolRunner invokes terraform and tflint against a working directory.
type ToolRunner struct {
	cmd CommandRunner
}

// NewToolRunner creates a ToolRunner with the given command runner.
func NewToolRunner(cmd CommandRunner) *ToolRunner {
	return &ToolRunner{cmd: cmd}
}

// Run executes the fixed tool sequence in dir: terraform validate always,
// then terraform init and tflint only when validation passed. Linters must
// run after init because most of them need the provider schemas it downloads.
//
// A returned error means a process-level failure (a tool could not be run at
// all, or init exited non-zero); a non-zero tflint exit reflects lint
// findings and is not an error.
func (t *ToolRunner) Run(ctx context.Context, dir string) (ToolResults, error) {
	var res ToolResults

	validate, err := t.cmd.Run(ctx, dir, "terraform", "validate", "-no-color")
	if err != nil {
		return res, fmt.Errorf("terraform validate: %w", err)
	}
	res.Validate = validate

	if validate.ExitCode != 0 {
		// Invalid configuration; linting is skipped and the lint streams
		// stay empty.
		return res, nil
	}

	initOut, err := t.cmd.Run(ctx, dir, "terraform", "init", "-backend=false")
	if err != nil {
		return res, fmt.Errorf("terraform init: %w", err)
	}
	if initOut.ExitCode != 0 {
		return res, fmt.Errorf("terraform init exited %d: %s", initOut.ExitCode, strings.TrimSpace(initOut.Stderr))
	}

	lint, err := t.cmd.Run(ctx, dir, "tflint", "--format=compact", "--recursive")
	if err != nil {
		return res, fmt.Errorf("tflint: %w", err)
	}
	res.Lint = lint
	return res, nil
}
