package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// ErrBinaryNotFound is returned when a backend executable cannot be located.
var ErrBinaryNotFound = errors.New("synthesis binary not found")

// waitDelay bounds how long Wait lingers on output pipes held open by
// orphaned children after the process was killed.
const waitDelay = time.Second

// SubprocessManager runs synthesis processes. Input is attached to stdin
// before the process starts and stderr is captured for error reports.
type SubprocessManager struct {
	// timeout bounds each run. Zero means the caller's context is the
	// only limit.
	timeout time.Duration
}

// NewSubprocessManager creates a subprocess manager.
func NewSubprocessManager(timeout time.Duration) *SubprocessManager {
	return &SubprocessManager{timeout: timeout}
}

// ExecuteWithStdin runs name with input on stdin and returns its stdout.
func (sm *SubprocessManager) ExecuteWithStdin(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	if sm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	// stdin must be set before Start
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", filepath.Base(name), err)
	}

	err := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && sm.timeout > 0 {
			return nil, fmt.Errorf("%s timed out after %v: %w", filepath.Base(name), sm.timeout, ctxErr)
		}
		return nil, fmt.Errorf("%s cancelled: %w", filepath.Base(name), ctxErr)
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w\nstderr: %s", filepath.Base(name), err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", filepath.Base(name), err)
	}

	return stdout.Bytes(), nil
}

// Execute runs name without input.
func (sm *SubprocessManager) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return sm.ExecuteWithStdin(ctx, "", name, args...)
}

// findBinary resolves an executable. An explicit path wins, then PATH,
// then the fallback locations.
func findBinary(explicit string, names []string, fallbacks []string) (string, error) {
	if explicit != "" {
		path, err := homedir.Expand(explicit)
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", explicit, err)
		}
		if resolved, err := exec.LookPath(path); err == nil {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, explicit)
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, candidate := range fallbacks {
		path, err := homedir.Expand(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, strings.Join(names, ", "))
}
