package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for pipes to close after the
// context kills the process, so a child that inherited the pipes
// cannot hang the hook forever.
const waitDelay = 5 * time.Second

// runShell is the production Runner. Commands go through the shell so
// hooks can use pipes, globs and env expansion.
func runShell(ctx context.Context, command, dir string, env []string) (string, string, int, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return "", "", -1, fmt.Errorf("working directory does not exist: %s", dir)
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		exitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}

	return stdout.String(), stderr.String(), exitCode, err
}

func processEnv() []string {
	return os.Environ()
}
