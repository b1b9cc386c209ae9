//go:build linux

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

type linuxBackend struct{ tempDir string }

func (l *linuxBackend) captureRaw(ctx context.Context, r Region) ([]byte, error) {
	tmpFile := filepath.Join(l.tempDir, "screen.png")

	// Neither tool captures a rectangle portably; grab the full screen
	// and crop in-process. Try gnome-screenshot first, fall back to scrot.
	var cmd *exec.Cmd
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		cmd = exec.CommandContext(ctx, "gnome-screenshot", "-f", tmpFile)
	} else if _, err := exec.LookPath("scrot"); err == nil {
		cmd = exec.CommandContext(ctx, "scrot", "-o", tmpFile)
	} else {
		return nil, fmt.Errorf("capture: no screenshot tool found (install gnome-screenshot or scrot)")
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("capture: screenshot: %w (%s)", err, stderr.String())
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("capture: read screenshot: %w", err)
	}
	os.Remove(tmpFile)
	return cropPNG(data, r)
}

func (l *linuxBackend) cleanup() {}

// New creates a platform-specific capture source
func New() Source {
	tmpDir, err := os.MkdirTemp("", "moomoo-capture-*")
	if err != nil {
		slog.Error("failed to create temp dir for screenshots", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&linuxBackend{tempDir: tmpDir}, tmpDir)
}
