package pack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noLookPath(string) (string, error) {
	return "", errors.New("not on PATH")
}

func createExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
}

func TestEditorLocator_Override(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "aseprite")
	createExecutable(t, exe)

	l := &editorLocator{goos: "linux", lookPath: noLookPath}
	got, err := l.Locate(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, got)
}

func TestEditorLocator_OverrideMissing(t *testing.T) {
	l := &editorLocator{goos: "linux", lookPath: noLookPath}

	_, err := l.Locate(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aseprite not found")
}

func TestEditorLocator_OverrideIsDirectory(t *testing.T) {
	l := &editorLocator{goos: "linux", lookPath: noLookPath}

	_, err := l.Locate(t.TempDir())
	require.Error(t, err)
}

func TestEditorLocator_LinuxPath(t *testing.T) {
	l := &editorLocator{
		goos: "linux",
		home: t.TempDir(),
		lookPath: func(name string) (string, error) {
			return "/usr/bin/" + name, nil
		},
	}

	got, err := l.Locate("")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/aseprite", got)
}

func TestEditorLocator_LinuxSteam(t *testing.T) {
	home := t.TempDir()
	exe := filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", "Aseprite", "aseprite")
	createExecutable(t, exe)

	l := &editorLocator{goos: "linux", home: home, lookPath: noLookPath}
	got, err := l.Locate("")
	require.NoError(t, err)
	assert.Equal(t, exe, got)
}

func TestEditorLocator_DarwinSteam(t *testing.T) {
	home := t.TempDir()
	exe := filepath.Join(home, "Library", "Application Support", "Steam", "steamapps", "common",
		"Aseprite", "Aseprite.app", "Contents", "MacOS", "aseprite")
	createExecutable(t, exe)

	l := &editorLocator{goos: "darwin", home: home, lookPath: noLookPath}
	got, err := l.Locate("")
	if _, statErr := os.Stat("/Applications/Aseprite.app/Contents/MacOS/aseprite"); statErr == nil {
		t.Skip("Aseprite is installed system-wide on this machine")
	}
	require.NoError(t, err)
	assert.Equal(t, exe, got)
}

func TestEditorLocator_NotFound(t *testing.T) {
	tests := []string{"linux", "darwin", "plan9"}

	for _, goos := range tests {
		t.Run(goos, func(t *testing.T) {
			l := &editorLocator{goos: goos, home: t.TempDir(), lookPath: noLookPath}
			if goos == "darwin" {
				if _, err := os.Stat("/Applications/Aseprite.app/Contents/MacOS/aseprite"); err == nil {
					t.Skip("Aseprite is installed system-wide on this machine")
				}
			}

			_, err := l.Locate("")
			assert.ErrorIs(t, err, ErrEditorNotFound)
		})
	}
}

func TestEditorLocator_WindowsCandidates(t *testing.T) {
	l := &editorLocator{goos: "windows"}

	candidates := l.candidates()
	require.Len(t, candidates, 2)
	assert.Contains(t, candidates[0], `Program Files\Aseprite`)
	assert.Contains(t, candidates[1], `Steam\steamapps\common\Aseprite`)
}
