package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// TrialCommand is the subcommand the child binary runs a trial under.
const TrialCommand = "trial"

// CommandConfig holds the resolved command, extra arguments, and
// environment variables needed to run the trial binary.
type CommandConfig struct {
	Binary    string
	ExtraArgs []string
	Env       []string
}

// ResolveBinary returns the absolute path of the trial binary. An empty
// path selects the running executable, which carries the trial command.
func ResolveBinary(path string) (string, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locate own executable: %w", err)
		}

		return exe, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve trial binary %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("trial binary not found at %s: %w", abs, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("trial binary %s is a directory", abs)
	}

	return abs, nil
}

// WrapCommand returns the exec configuration that runs one trial through
// binPath.
func WrapCommand(binPath string) CommandConfig {
	return CommandConfig{
		Binary:    binPath,
		ExtraArgs: []string{TrialCommand},
	}
}
