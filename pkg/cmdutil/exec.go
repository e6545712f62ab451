package cmdutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// ExecOptions configures command execution.
type ExecOptions struct {
	// Dir is the working directory for the command.
	Dir string

	// Timeout is the maximum execution time.
	// If zero, no timeout is applied.
	Timeout time.Duration

	// Env contains environment variables for the command.
	// Each entry should be in the form "KEY=value".
	Env []string
}

// Result contains the result of a command execution.
type Result struct {
	// Stdout is the standard output of the command.
	Stdout []byte

	// Stderr is the standard error of the command.
	Stderr []byte

	// ExitCode is the exit code of the command.
	ExitCode int

	// Duration is how long the command took to execute.
	Duration time.Duration
}

// Run executes a command with the given options.
// The command is provided as a slice of arguments (command and its arguments).
// Returns the result or an error if the command fails.
func Run(ctx context.Context, opts ExecOptions, cmdParts []string) (*Result, error) {
	if len(cmdParts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	// Apply timeout if specified
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env

	start := time.Now()

	var result Result
	var err error

	result.Stdout, err = cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.Stderr = exitErr.Stderr
	}

	result.Duration = time.Since(start)

	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		// The cause of a CLI failure lives on stderr; without it the
		// operator only sees the exit status.
		if stderr := strings.TrimSpace(string(result.Stderr)); stderr != "" {
			return &result, fmt.Errorf("command failed: %w: %s", err, stderr)
		}
		return &result, fmt.Errorf("command failed: %w", err)
	}

	return &result, nil
}

// RunJSON executes a command and decodes its standard output as JSON into v.
// Useful for CLI tools that emit machine-readable output (e.g. "az ... -o json").
func RunJSON(ctx context.Context, opts ExecOptions, cmdParts []string, v interface{}) error {
	result, err := Run(ctx, opts, cmdParts)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result.Stdout, v); err != nil {
		return fmt.Errorf("failed to parse command output as JSON: %w", err)
	}

	return nil
}

// ParseCommandString parses a shell-quoted command string into parts.
// This is useful when commands are stored as strings with proper quoting.
//
// Example:
//   "az account show --query \"user.name\"" -> ["az", "account", "show", "--query", "user.name"]
func ParseCommandString(cmdStr string) ([]string, error) {
	parts, err := shellquote.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command string: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command string")
	}
	return parts, nil
}

// FormatCommand formats command parts into a readable string for logging.
// Example: ["az", "account", "show"] -> "az account show"
func FormatCommand(cmdParts []string) string {
	if len(cmdParts) == 0 {
		return "<empty command>"
	}

	// Quote arguments that contain spaces or special characters
	quoted := make([]string, len(cmdParts))
	for i, part := range cmdParts {
		if strings.ContainsAny(part, " \t\n\"'") {
			quoted[i] = shellquote.Join(part)
		} else {
			quoted[i] = part
		}
	}

	return strings.Join(quoted, " ")
}
