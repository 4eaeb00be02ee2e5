package pack

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// SliceTemplate names each exported file after the slice it came from.
const SliceTemplate = "{slice}.png"

// SpriteExporter defines the interface for exporting editor documents to images
type SpriteExporter interface {
	// ExportSlices exports every slice of source as a PNG into destDir
	ExportSlices(ctx context.Context, source, destDir string) error
}

// asepriteExporter implements the SpriteExporter interface
type asepriteExporter struct {
	editorPath string
}

// NewSpriteExporter creates a SpriteExporter that drives the given Aseprite executable
func NewSpriteExporter(editorPath string) SpriteExporter {
	return &asepriteExporter{editorPath: editorPath}
}

// ExportSlices runs Aseprite in batch mode, saving one PNG per slice
func (e *asepriteExporter) ExportSlices(ctx context.Context, source, destDir string) error {
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source does not exist: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.editorPath, exportArgs(source, destDir)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("aseprite failed for %s: %w, output: %s", source, err, output)
	}
	return nil
}

func exportArgs(source, destDir string) []string {
	return []string{"-b", source, "--save-as", filepath.Join(destDir, SliceTemplate)}
}
