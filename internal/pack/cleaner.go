package pack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/acm19/texpack/internal/logger"
	"github.com/karrick/godirwalk"
	"golang.org/x/sync/errgroup"
)

// Cleaner defines the interface for removing blank placeholder images
type Cleaner interface {
	// RemoveEmptyImages classifies every image directly inside dir and deletes the empty ones
	RemoveEmptyImages(ctx context.Context, dir string, opts CleanOptions) (CleanReport, error)
}

// imageCleaner implements the Cleaner interface
type imageCleaner struct {
	extensions Extensions
}

// NewCleaner creates a new Cleaner instance
func NewCleaner() Cleaner {
	return &imageCleaner{extensions: NewExtensions()}
}

// RemoveEmptyImages classifies images in parallel. Images that cannot be classified are
// left in place and reported as skipped; only a failed delete aborts the sweep.
func (c *imageCleaner) RemoveEmptyImages(ctx context.Context, dir string, opts CleanOptions) (CleanReport, error) {
	if err := opts.Classifier.Validate(); err != nil {
		return CleanReport{}, err
	}

	images, err := c.listImages(dir)
	if err != nil {
		return CleanReport{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	logger.Debug("Scanning for empty images", "directory", dir, "images", len(images))

	numWorkers := opts.MaxConcurrency
	if numWorkers <= 0 {
		numWorkers = 1
	}

	var (
		mu     sync.Mutex
		report = CleanReport{Scanned: len(images)}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for _, path := range images {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			verdict, err := ClassifyFile(path, opts.Classifier, opts.Verbose)
			if err != nil {
				logger.Warn("Cannot classify image, leaving it alone", "file", path, "error", err)
				mu.Lock()
				report.Skipped = append(report.Skipped, path)
				mu.Unlock()
				return nil
			}
			if verdict.Diagnostic != "" {
				logger.Debug(verdict.Diagnostic)
			}
			if !verdict.IsEmpty {
				return nil
			}

			if opts.DryRun {
				logger.Info("Empty image (dry run, not deleting)", "file", path, "ratio", verdict.Ratio)
			} else {
				if opts.Verbose {
					logger.Info("Empty image, deleting", "file", path, "ratio", verdict.Ratio)
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to delete empty image %s: %w", path, err)
				}
			}

			mu.Lock()
			report.Removed = append(report.Removed, path)
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	sort.Strings(report.Removed)
	sort.Strings(report.Skipped)
	if err != nil {
		return report, err
	}
	return report, nil
}

// listImages returns the images directly inside dir, skipping dot files
func (c *imageCleaner) listImages(dir string) ([]string, error) {
	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, de := range dirents {
		name := de.Name()
		if strings.HasPrefix(name, ".") || de.IsDir() {
			continue
		}
		if c.extensions.IsImage(name) {
			images = append(images, filepath.Join(dir, name))
		}
	}
	sort.Strings(images)
	return images, nil
}
