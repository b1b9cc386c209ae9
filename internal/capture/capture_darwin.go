//go:build darwin

package capture

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

type darwinBackend struct{ tempDir string }

func (d *darwinBackend) captureRaw(ctx context.Context, r Region) ([]byte, error) {
	tmpFile := filepath.Join(d.tempDir, "region.png")

	// -x: no sound, -R: capture the given rectangle only
	cmd := exec.CommandContext(ctx, "screencapture", "-x", "-t", "png", "-R", r.String(), tmpFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("capture: screencapture: %w (%s)", err, stderr.String())
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("capture: read screenshot: %w", err)
	}
	os.Remove(tmpFile)
	return data, nil
}

func (d *darwinBackend) cleanup() {}

// New creates a platform-specific capture source
func New() Source {
	tmpDir, err := os.MkdirTemp("", "moomoo-capture-*")
	if err != nil {
		slog.Error("failed to create temp dir for screenshots", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&darwinBackend{tempDir: tmpDir}, tmpDir)
}
