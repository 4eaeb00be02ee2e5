package pack

import (
	"fmt"
	"os"
	"strings"

	"github.com/karrick/godirwalk"
)

// FileStats defines the interface for build directory statistics
type FileStats interface {
	// ValidateDirectory checks that dir exists and is a directory
	ValidateDirectory(dir string) error
	// CountImages returns the number of images in a directory tree
	CountImages(dir string) (int, error)
}

// fileStats implements the FileStats interface
type fileStats struct {
	extensions Extensions
}

// NewFileStats creates a new FileStats instance
func NewFileStats() FileStats {
	return &fileStats{extensions: NewExtensions()}
}

// ValidateDirectory checks that dir exists and is a directory
func (f *fileStats) ValidateDirectory(dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a valid directory: %s", dir)
	}
	return nil
}

// CountImages counts images in a directory tree, excluding dot files and dot directories
func (f *fileStats) CountImages(dir string) (int, error) {
	count := 0
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path != dir && strings.HasPrefix(de.Name(), ".") {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsDir() && f.extensions.IsImage(path) {
				count++
			}
			return nil
		},
	})
	return count, err
}
