package pack

// Progress stages reported during a build.
const (
	StageExporting = "exporting"
	StageCleaning  = "cleaning"
	StageArchiving = "archiving"
)

// BuildOptions holds configuration options for building a texture pack.
type BuildOptions struct {
	// Location is where the pack is built (current directory when empty).
	Location string
	// BuildFolder builds into a BUILD subdirectory of Location.
	BuildFolder bool
	// Zip archives the build directory when done.
	Zip bool
	// Verbose logs per-file details, including classifier diagnostics.
	Verbose bool
	// EditorPath is the Aseprite executable; discovered when empty.
	EditorPath string
	// ManifestPath is the JSON or YAML file describing the pack layout.
	ManifestPath string
	// PackName is appended to the build directory name to name the archive.
	PackName string
	// Classifier tunes empty-image detection.
	Classifier ClassifierConfig
	// MaxConcurrency is the maximum number of images classified at once.
	MaxConcurrency int
	// MinSourceSize skips smaller source documents (0 disables the check).
	MinSourceSize int64
	// DryRun reports empty images without deleting them.
	DryRun bool
	// ProgressChan is an optional channel for receiving progress events.
	ProgressChan chan<- ProgressEvent
}

// DefaultBuildOptions returns the default build options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ManifestPath:   "file_structure.json",
		PackName:       "Better_than_Noise",
		Classifier:     DefaultClassifierConfig(),
		MaxConcurrency: 4,
		MinSourceSize:  MinSourceSize,
	}
}

// CleanOptions controls a single empty-image sweep.
type CleanOptions struct {
	Classifier     ClassifierConfig
	MaxConcurrency int
	Verbose        bool
	DryRun         bool
}

// CleanReport describes the outcome of one sweep. Paths are sorted.
type CleanReport struct {
	// Scanned is the number of images inspected.
	Scanned int
	// Removed lists images classified empty (and deleted unless dry run).
	Removed []string
	// Skipped lists images that could not be classified and were left alone.
	Skipped []string
}

// BuildSummary describes a finished build.
type BuildSummary struct {
	BuildDir string
	// Exported is the number of source documents handed to the editor.
	Exported int
	// SkippedSources lists sources that were missing or too small.
	SkippedSources []string
	// Removed is the number of empty images deleted.
	Removed int
	// Unclassified is the number of images left alone because they could not be parsed.
	Unclassified int
	// Images is the number of images in the finished pack.
	Images int
	// Archive is the zip path, empty when not zipped.
	Archive string
}

// ProgressEvent represents a progress update during a build.
type ProgressEvent struct {
	// Stage is one of StageExporting, StageCleaning, StageArchiving.
	Stage string
	// Current is the number of items processed so far.
	Current int
	// Total is the total number of items to process.
	Total int
	// Message is a human-readable description of the current operation.
	Message string
	// File is the path currently being processed.
	File string
}
