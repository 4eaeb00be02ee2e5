package pack

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// MinSourceSize is the smallest editor document that can hold texture data.
	MinSourceSize = 5000
	// PackIconSource is exempt from the size check; the pack icon is legitimately tiny.
	PackIconSource = "pack.aseprite"
)

// isValidFile checks if a file exists and is not empty (0 bytes).
// Returns an error if the file cannot be accessed or is 0 bytes.
func isValidFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is 0 bytes (corrupted)")
	}
	return nil
}

// isSignificantSource reports whether a source document is large enough to be worth
// exporting. A non-positive minSize disables the check.
func isSignificantSource(filePath string, minSize int64) (bool, error) {
	if err := isValidFile(filePath); err != nil {
		return false, err
	}
	if minSize <= 0 || filepath.Base(filePath) == PackIconSource {
		return true, nil
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return false, fmt.Errorf("cannot access file: %w", err)
	}
	return info.Size() >= minSize, nil
}
