// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cli detects and executes the provider command-line tools
// (gcloud, gsutil) that the pipeline stages shell out to.
package cli

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binGcloud = "gcloud"
	binGsutil = "gsutil"
)

// Executor abstracts command execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunOutput(name string, args ...string) ([]byte, error)
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunOutput(name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec Executor = &osExecutor{}

// Tool wraps one provider binary. All pipeline stages that shell out go
// through a Tool so tests can substitute a mock executor.
type Tool struct {
	bin  string
	exec Executor
}

// Name returns the binary name ("gcloud" or "gsutil").
func (t *Tool) Name() string { return t.bin }

// Available reports whether the binary exists on PATH and responds to a
// version probe.
func (t *Tool) Available() bool {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return false
	}
	return t.exec.RunSilent(t.bin, "version") == nil
}

// Run executes the tool, discarding output. The wrapped error carries the
// tool's stderr diagnostic when the invocation fails.
func (t *Tool) Run(args ...string) error {
	if _, err := t.exec.RunOutput(t.bin, args...); err != nil {
		return fmt.Errorf("%s %s: %w", t.bin, strings.Join(args, " "), err)
	}
	return nil
}

// Output executes the tool and returns its stdout.
func (t *Tool) Output(args ...string) ([]byte, error) {
	out, err := t.exec.RunOutput(t.bin, args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t.bin, strings.Join(args, " "), err)
	}
	return out, nil
}

// RunPiped executes the tool with stdin and stdout connected to the
// given reader and writer.
func (t *Tool) RunPiped(args []string, stdin io.Reader, stdout io.Writer) error {
	if err := t.exec.RunPiped(t.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("%s %s: %w", t.bin, strings.Join(args, " "), err)
	}
	return nil
}

// NewTool builds a Tool around an explicit executor. Tests use this with
// a mock; production code goes through the Detect functions.
func NewTool(bin string, exec Executor) *Tool {
	return &Tool{bin: bin, exec: exec}
}

// DetectGcloud returns the gcloud tool, or an error when the binary is
// missing or not operational.
func DetectGcloud() (*Tool, error) {
	return detect(defaultExec, binGcloud)
}

// DetectGsutil returns the gsutil tool, or an error when the binary is
// missing or not operational.
func DetectGsutil() (*Tool, error) {
	return detect(defaultExec, binGsutil)
}

func detect(exec Executor, bin string) (*Tool, error) {
	t := &Tool{bin: bin, exec: exec}
	if !t.Available() {
		return nil, fmt.Errorf("%s not available: binary missing from PATH or not operational", bin)
	}
	return t, nil
}
