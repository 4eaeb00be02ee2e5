package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultManifest       = "file_structure.json"
	DefaultPackName       = "Better_than_Noise"
	DefaultThreshold      = 20.0
	DefaultMaxConcurrency = 4
)

// Config holds settings read from the environment (and an optional .env file).
type Config struct {
	// EditorPath overrides Aseprite discovery when set.
	EditorPath string
	// ManifestPath is the file describing the pack layout.
	ManifestPath string
	// PackName is appended to the build directory name for the zip archive.
	PackName string
	// Threshold is the zero-byte percentage above which an image is empty.
	Threshold float64
	// Bucket is the default S3 bucket for publishing.
	Bucket string
	// MaxConcurrency bounds how many images are classified at once.
	MaxConcurrency int
}

// Load reads .env from the working directory (if any) and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		EditorPath:     getenv("TEXPACK_ASEPRITE"),
		ManifestPath:   getenv("TEXPACK_MANIFEST"),
		PackName:       getenv("TEXPACK_PACK_NAME"),
		Bucket:         getenv("TEXPACK_BUCKET"),
		Threshold:      DefaultThreshold,
		MaxConcurrency: DefaultMaxConcurrency,
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifest
	}
	if cfg.PackName == "" {
		cfg.PackName = DefaultPackName
	}

	if raw := getenv("TEXPACK_EMPTY_THRESHOLD"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TEXPACK_EMPTY_THRESHOLD %q: %w", raw, err)
		}
		if threshold < 0 || threshold > 100 {
			return nil, fmt.Errorf("TEXPACK_EMPTY_THRESHOLD must be between 0 and 100, got %v", threshold)
		}
		cfg.Threshold = threshold
	}

	if raw := getenv("TEXPACK_MAX_CONCURRENT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TEXPACK_MAX_CONCURRENT %q: %w", raw, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("TEXPACK_MAX_CONCURRENT must be at least 1, got %d", n)
		}
		cfg.MaxConcurrency = n
	}

	return cfg, nil
}
