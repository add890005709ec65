package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/sitepub/internal/logfields"
)

// HugoRenderer invokes the external hugo binary against the source tree.
type HugoRenderer struct {
	// Binary is the executable name or path, default "hugo".
	Binary string
}

// NewHugoRenderer creates a renderer around the given binary name.
func NewHugoRenderer(binary string) *HugoRenderer {
	if binary == "" {
		binary = "hugo"
	}
	return &HugoRenderer{Binary: binary}
}

// Available reports whether the configured binary exists in PATH.
func (r *HugoRenderer) Available() bool {
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// Render executes the binary inside sourceDir, directing output to outDir.
// A non-zero exit is fatal; hugo's own stdout/stderr pass through so the
// operator sees the renderer's error verbatim.
func (r *HugoRenderer) Render(ctx context.Context, sourceDir, outDir string) error {
	absOut, err := absPath(outDir)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, r.Binary, "--destination", absOut)
	cmd.Dir = sourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Info("Running site renderer", logfields.Source(sourceDir), logfields.Path(absOut), slog.String("binary", r.Binary))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s command failed: %w", r.Binary, err)
	}
	return nil
}
