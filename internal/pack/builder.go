package pack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/acm19/texpack/internal/logger"
	"github.com/gofrs/flock"
)

const (
	// BuildFolderName is the subdirectory used when BuildOptions.BuildFolder is set.
	BuildFolderName = "BUILD"

	// BuildLockName is the lock file held inside the build directory while a build runs.
	BuildLockName = ".texpack.lock"
)

// ErrBuildLocked is returned when another build holds the build directory's lock.
var ErrBuildLocked = errors.New("another build is using this build directory")

// Builder defines the interface for building a texture pack
type Builder interface {
	// Build exports every manifest entry, removes empty images and optionally zips the result
	Build(ctx context.Context, opts BuildOptions) (BuildSummary, error)
}

// packBuilder implements the Builder interface
type packBuilder struct {
	locator     EditorLocator
	newExporter func(editorPath string) SpriteExporter
	cleaner     Cleaner
	stats       FileStats
	extensions  Extensions
}

// exportOutcome records what happened to one entry's source document
type exportOutcome int

const (
	exported exportOutcome = iota
	sourceMissing
	sourceInsignificant
)

// NewBuilder creates a Builder that drives a locally installed Aseprite
func NewBuilder() Builder {
	return NewBuilderWith(NewEditorLocator(), NewSpriteExporter, NewCleaner())
}

// NewBuilderWith creates a Builder with custom collaborators
func NewBuilderWith(locator EditorLocator, newExporter func(string) SpriteExporter, cleaner Cleaner) Builder {
	return &packBuilder{
		locator:     locator,
		newExporter: newExporter,
		cleaner:     cleaner,
		stats:       NewFileStats(),
		extensions:  NewExtensions(),
	}
}

// Build runs the whole pipeline for one manifest
func (b *packBuilder) Build(ctx context.Context, opts BuildOptions) (BuildSummary, error) {
	if err := opts.Classifier.Validate(); err != nil {
		return BuildSummary{}, err
	}

	buildDir, err := resolveBuildDir(opts)
	if err != nil {
		return BuildSummary{}, err
	}
	summary := BuildSummary{BuildDir: buildDir}

	lock := flock.New(filepath.Join(buildDir, BuildLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("failed to lock build directory: %w", err)
	}
	if !locked {
		return summary, fmt.Errorf("%w: %s", ErrBuildLocked, buildDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Error("Failed to release build lock", "path", lock.Path(), "error", err)
		}
	}()

	manifest, err := LoadManifest(opts.ManifestPath)
	if err != nil {
		return summary, err
	}
	logger.Info("Building texture pack", "build_dir", buildDir, "manifest", opts.ManifestPath, "entries", len(manifest.Entries))

	for _, dir := range manifest.Dirs() {
		path := filepath.Join(buildDir, dir.Path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Debug("Making directory", "path", path)
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return summary, fmt.Errorf("failed to create %s: %w", path, err)
		}
	}

	exporter, err := b.exporterFor(manifest, opts.EditorPath)
	if err != nil {
		return summary, err
	}

	start := time.Now()
	total := len(manifest.Entries)
	for i, entry := range manifest.Entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if entry.HasSource() {
			outcome, err := b.exportEntry(ctx, exporter, manifest, entry, buildDir, opts, i+1, total)
			if err != nil {
				return summary, err
			}
			if outcome == exported {
				summary.Exported++
			} else {
				summary.SkippedSources = append(summary.SkippedSources, manifest.SourcePath(entry))
			}
			// A placeholder source leaves its folder untouched
			if outcome == sourceInsignificant {
				continue
			}
		}

		// Only directory entries are swept
		if entry.IsDir() {
			dir := filepath.Join(buildDir, entry.Path)
			emitProgress(opts.ProgressChan, ProgressEvent{
				Stage:   StageCleaning,
				Current: i + 1,
				Total:   total,
				Message: fmt.Sprintf("Removing empty images from %s", entry.Path),
				File:    dir,
			})
			report, err := b.cleaner.RemoveEmptyImages(ctx, dir, CleanOptions{
				Classifier:     opts.Classifier,
				MaxConcurrency: opts.MaxConcurrency,
				Verbose:        opts.Verbose,
				DryRun:         opts.DryRun,
			})
			if err != nil {
				return summary, fmt.Errorf("failed to clean %s: %w", dir, err)
			}
			summary.Removed += len(report.Removed)
			summary.Unclassified += len(report.Skipped)
		}
	}
	logger.Info("Export completed", "exported", summary.Exported, "removed", summary.Removed, "duration_seconds", time.Since(start).Seconds())

	summary.Images, err = b.stats.CountImages(buildDir)
	if err != nil {
		return summary, fmt.Errorf("failed to count images: %w", err)
	}

	if opts.Zip {
		archive := ArchivePath(buildDir, opts.PackName)
		emitProgress(opts.ProgressChan, ProgressEvent{
			Stage:   StageArchiving,
			Current: 1,
			Total:   1,
			Message: "Zipping build directory",
			File:    archive,
		})
		logger.Info("Creating archive", "path", archive)
		if err := ZipDirectory(buildDir, archive); err != nil {
			return summary, fmt.Errorf("failed to zip build directory: %w", err)
		}
		summary.Archive = archive
	}

	return summary, nil
}

// exporterFor locates the editor only when some entry has something to export
func (b *packBuilder) exporterFor(manifest Manifest, override string) (SpriteExporter, error) {
	for _, e := range manifest.Entries {
		if !e.HasSource() {
			continue
		}
		editorPath, err := b.locator.Locate(override)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Aseprite", "path", editorPath)
		return b.newExporter(editorPath), nil
	}
	return nil, nil
}

// exportEntry exports one source document and reports whether it was skipped and why.
func (b *packBuilder) exportEntry(ctx context.Context, exporter SpriteExporter, manifest Manifest, entry Entry, buildDir string, opts BuildOptions, current, total int) (exportOutcome, error) {
	source := manifest.SourcePath(entry)
	if _, err := os.Stat(source); err != nil {
		logger.Warn("Unable to find source, skipping export", "source", source)
		return sourceMissing, nil
	}
	if !b.extensions.IsSource(source) {
		logger.Warn("Source does not look like an Aseprite document", "source", source)
	}

	significant, err := isSignificantSource(source, opts.MinSourceSize)
	if err != nil {
		logger.Warn("Unusable source, skipping export", "source", source, "error", err)
		return sourceMissing, nil
	}
	if !significant {
		logger.Debug("Source is an empty file, skipping export", "source", source)
		return sourceInsignificant, nil
	}

	dest := buildDir
	if entry.IsDir() {
		dest = filepath.Join(buildDir, entry.Path)
	}

	emitProgress(opts.ProgressChan, ProgressEvent{
		Stage:   StageExporting,
		Current: current,
		Total:   total,
		Message: fmt.Sprintf("Exporting %s to %s", entry.Source, entry.Path),
		File:    source,
	})
	logger.Debug("Exporting", "source", source, "dest", dest)

	if err := exporter.ExportSlices(ctx, source, dest); err != nil {
		return exported, fmt.Errorf("failed to export %s: %w", source, err)
	}
	return exported, nil
}

// resolveBuildDir creates and returns the directory the pack is built into
func resolveBuildDir(opts BuildOptions) (string, error) {
	location := opts.Location
	if location == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		location = wd
	}

	buildDir := location
	if opts.BuildFolder {
		buildDir = filepath.Join(location, BuildFolderName)
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create build directory: %w", err)
	}
	return buildDir, nil
}

// emitProgress sends a progress event without blocking the build
func emitProgress(progressChan chan<- ProgressEvent, event ProgressEvent) {
	if progressChan == nil {
		return
	}
	select {
	case progressChan <- event:
	default:
		logger.Debug("Progress event dropped (channel full)", "stage", event.Stage)
	}
}
