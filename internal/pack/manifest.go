package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileTypeDir marks an entry whose output path is a directory.
const FileTypeDir = "dir"

// Entry is one output location in the pack.
type Entry struct {
	// Path is the output path relative to the build directory.
	Path string `json:"-" yaml:"-"`
	// Source is the editor document exported into Path, empty for plain directories.
	Source string `json:"aseprite_file" yaml:"aseprite_file"`
	// FileType is "dir" for directories; anything else exports into the build root.
	FileType string `json:"filetype" yaml:"filetype"`
}

// IsDir returns true if the entry is a directory in the pack.
func (e Entry) IsDir() bool {
	return e.FileType == FileTypeDir
}

// HasSource returns true if the entry has a document to export.
func (e Entry) HasSource() bool {
	return e.Source != ""
}

// Manifest describes the layout of a texture pack.
type Manifest struct {
	// BaseDir is the manifest's directory; relative sources resolve against it.
	BaseDir string
	// Entries are sorted by Path.
	Entries []Entry
}

// SourcePath returns the absolute-or-base-relative path of an entry's source document.
func (m Manifest) SourcePath(e Entry) string {
	if filepath.IsAbs(e.Source) {
		return e.Source
	}
	return filepath.Join(m.BaseDir, e.Source)
}

// Dirs returns the directory entries.
func (m Manifest) Dirs() []Entry {
	var dirs []Entry
	for _, e := range m.Entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	return dirs
}

// LoadManifest reads a JSON or YAML manifest mapping output paths to entries.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	if !NewExtensions().IsManifest(path) {
		return Manifest{}, fmt.Errorf("unsupported manifest format: %s", path)
	}

	raw := map[string]Entry{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	m := Manifest{BaseDir: filepath.Dir(path)}
	for p, e := range raw {
		if p == "" {
			return Manifest{}, fmt.Errorf("manifest %s has an entry with an empty path", path)
		}
		if filepath.IsAbs(p) || strings.HasPrefix(filepath.Clean(p), "..") {
			return Manifest{}, fmt.Errorf("manifest path %q escapes the build directory", p)
		}
		e.Path = p
		m.Entries = append(m.Entries, e)
	}
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
	return m, nil
}
