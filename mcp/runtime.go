package mcp

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Runtime describes the interpreter or binary behind a stdio tool server.
type Runtime struct {
	Name      string
	Installed bool
	Version   string
	Path      string
	Error     string
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// CheckCommand verifies that a stdio server command can be started.
func CheckCommand(command string) error {
	if command == "" {
		return fmt.Errorf("stdio transport requires a command")
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%s not found", command)
	}
	return nil
}

// DetectRuntime looks up command and asks it for its version.
func DetectRuntime(ctx context.Context, command string) *Runtime {
	runtime := &Runtime{Name: command}

	path, err := exec.LookPath(command)
	if err != nil {
		runtime.Error = fmt.Sprintf("%s not found", command)
		return runtime
	}
	runtime.Path = path
	runtime.Installed = true

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, command, "--version").Output()
	if err != nil {
		runtime.Error = fmt.Sprintf("failed to get %s version", command)
		return runtime
	}
	runtime.Version = parseVersionOutput(string(output))
	return runtime
}

func parseVersionOutput(output string) string {
	output = strings.TrimSpace(output)
	if m := versionPattern.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return output
}
