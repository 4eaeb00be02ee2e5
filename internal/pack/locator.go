package pack

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/acm19/texpack/internal/logger"
)

// ErrEditorNotFound is returned when no Aseprite executable can be found.
var ErrEditorNotFound = errors.New("cannot find Aseprite install, specify it with the --aseprite flag")

// EditorLocator finds the Aseprite executable.
type EditorLocator interface {
	// Locate returns override when set (after checking it exists), otherwise probes the
	// default install locations for the current OS.
	Locate(override string) (string, error)
}

// editorLocator implements the EditorLocator interface
type editorLocator struct {
	goos     string
	home     string
	lookPath func(string) (string, error)
}

// NewEditorLocator creates an EditorLocator for the running OS and user.
func NewEditorLocator() EditorLocator {
	home, _ := os.UserHomeDir()
	return &editorLocator{
		goos:     runtime.GOOS,
		home:     home,
		lookPath: exec.LookPath,
	}
}

// Locate returns the editor executable path.
func (l *editorLocator) Locate(override string) (string, error) {
	if override != "" {
		if !isRegularFile(override) {
			return "", fmt.Errorf("aseprite not found at %s", override)
		}
		return override, nil
	}

	logger.Info("Checking for Aseprite install", "os", l.goos)

	if l.goos == "linux" && l.lookPath != nil {
		if path, err := l.lookPath("aseprite"); err == nil {
			logger.Info("Aseprite found", "path", path)
			return path, nil
		}
	}

	for _, candidate := range l.candidates() {
		if isRegularFile(candidate) {
			logger.Info("Aseprite found", "path", candidate)
			return candidate, nil
		}
	}

	return "", ErrEditorNotFound
}

// candidates lists the default and Steam install locations for the OS.
func (l *editorLocator) candidates() []string {
	switch l.goos {
	case "windows":
		return []string{
			`C:\Program Files\Aseprite\Aseprite.exe`,
			`C:\Program Files (x86)\Steam\steamapps\common\Aseprite\Aseprite.exe`,
		}
	case "darwin":
		paths := []string{"/Applications/Aseprite.app/Contents/MacOS/aseprite"}
		if l.home != "" {
			paths = append(paths, filepath.Join(l.home, "Library", "Application Support", "Steam",
				"steamapps", "common", "Aseprite", "Aseprite.app", "Contents", "MacOS", "aseprite"))
		}
		return paths
	case "linux":
		if l.home == "" {
			return nil
		}
		return []string{
			filepath.Join(l.home, ".steam", "steam", "steamapps", "common", "Aseprite", "aseprite"),
			filepath.Join(l.home, ".local", "share", "Steam", "steamapps", "common", "Aseprite", "aseprite"),
		}
	default:
		return nil
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
