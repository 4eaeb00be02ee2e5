package pack

import (
	"path/filepath"
	"slices"
	"strings"
)

// Extensions defines the interface for file extension checks.
type Extensions interface {
	// IsImage returns true if the file is an exported image the cleaner inspects.
	IsImage(filePath string) bool
	// IsSource returns true if the file is an editor source document.
	IsSource(filePath string) bool
	// IsManifest returns true if the file has a supported manifest extension.
	IsManifest(filePath string) bool
}

// extensions implements the Extensions interface.
type extensions struct {
	imageExts    []string
	sourceExts   []string
	manifestExts []string
}

// NewExtensions creates a new Extensions instance.
func NewExtensions() Extensions {
	return &extensions{
		imageExts:    []string{".png"},
		sourceExts:   []string{".aseprite", ".ase"},
		manifestExts: []string{".json", ".yaml", ".yml"},
	}
}

// IsImage returns true if the file is an exported image the cleaner inspects.
func (e *extensions) IsImage(filePath string) bool {
	return slices.Contains(e.imageExts, lowerExt(filePath))
}

// IsSource returns true if the file is an editor source document.
func (e *extensions) IsSource(filePath string) bool {
	return slices.Contains(e.sourceExts, lowerExt(filePath))
}

// IsManifest returns true if the file has a supported manifest extension.
func (e *extensions) IsManifest(filePath string) bool {
	return slices.Contains(e.manifestExts, lowerExt(filePath))
}

func lowerExt(filePath string) string {
	return strings.ToLower(filepath.Ext(filePath))
}
