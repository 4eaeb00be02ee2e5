package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acm19/texpack/internal/logger"
	"github.com/karrick/godirwalk"
)

// ArchivePath returns where the zip of buildDir is written.
func ArchivePath(buildDir, packName string) string {
	return filepath.Clean(buildDir) + "_" + packName + ".zip"
}

// ZipDirectory creates a zip archive of a directory, with entry names relative to it.
// A failed archive is removed rather than left half written.
func ZipDirectory(sourceDir, targetFile string) (err error) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	absTarget, err := filepath.Abs(targetFile)
	if err != nil {
		return err
	}
	if strings.HasPrefix(absTarget, absSource+string(filepath.Separator)) {
		return fmt.Errorf("archive %s must not be inside %s", targetFile, sourceDir)
	}

	file, err := os.Create(targetFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(targetFile)
		}
	}()

	zipWriter := zip.NewWriter(file)

	err = godirwalk.Walk(sourceDir, &godirwalk.Options{
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			relPath, err := filepath.Rel(sourceDir, path)
			if err != nil {
				return err
			}
			if relPath == "." || relPath == BuildLockName {
				return nil
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			header, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			header.Name = filepath.ToSlash(relPath)
			if info.IsDir() {
				header.Name += "/"
				_, err := zipWriter.CreateHeader(header)
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			header.Method = zip.Deflate

			w, err := zipWriter.CreateHeader(header)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err := io.Copy(w, f); err != nil {
				return err
			}
			logger.Debug("Archived file", "path", header.Name)
			return nil
		},
	})
	if err != nil {
		zipWriter.Close()
		return err
	}

	return zipWriter.Close()
}
