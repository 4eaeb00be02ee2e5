package main

import (
	"context"
	"fmt"
	"os"

	"github.com/acm19/texpack/internal/config"
	"github.com/acm19/texpack/internal/logger"
	"github.com/acm19/texpack/internal/pack"
	"github.com/barasher/go-exiftool"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "texpack",
	Short:   "Export Aseprite artwork into a game texture pack",
	Long:    `Texpack uses Aseprite's batch mode to export textures into a texture pack folder structure, removes blank placeholder images, and can zip and publish the result.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger.SetVerbose(verbose)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export all textures described by the manifest",
	Long:  `Creates the manifest's folder structure, exports every Aseprite file with its slices, deletes empty images and optionally zips the build folder.`,
	Args:  cobra.NoArgs,
	Run:   runBuild,
}

var cleanCmd = &cobra.Command{
	Use:   "clean DIRECTORY",
	Short: "Delete empty images from a directory",
	Long:  `Classifies every PNG directly inside DIRECTORY and deletes those that are blank placeholders. Images that cannot be parsed are left alone.`,
	Args:  cobra.ExactArgs(1),
	Run:   runClean,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Report whether images are empty without deleting them",
	Args:  cobra.MinimumNArgs(1),
	Run:   runInspect,
}

var publishCmd = &cobra.Command{
	Use:   "publish ARCHIVE [BUCKET]",
	Short: "Upload a pack archive to S3",
	Long:  `Uploads the archive to S3, skipping the upload when an object with the same MD5 already exists. BUCKET defaults to TEXPACK_BUCKET.`,
	Args:  cobra.RangeArgs(1, 2),
	Run:   runPublish,
}

var (
	cfg *config.Config

	location      string
	buildFolder   bool
	zipBuild      bool
	verbose       bool
	editorPath    string
	manifestPath  string
	packName      string
	threshold     float64
	maxConcurrent int
	dryRun        bool
	publishKey    string
	withMetadata  bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Shared classifier flags
	for _, cmd := range []*cobra.Command{buildCmd, cleanCmd, inspectCmd} {
		cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Maximum percent of zero bytes in pixel data before an image counts as empty (default from TEXPACK_EMPTY_THRESHOLD or 20)")
	}
	for _, cmd := range []*cobra.Command{buildCmd, cleanCmd} {
		cmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "c", 0, "Maximum images classified at once (default from TEXPACK_MAX_CONCURRENT or 4)")
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report empty images without deleting them")
	}

	// Build command flags
	buildCmd.Flags().StringVarP(&location, "location", "l", "", "Where to build the texture pack to, defaults to the current directory")
	buildCmd.Flags().BoolVarP(&buildFolder, "build-folder", "b", false, "Build to a new BUILD folder of the selected directory")
	buildCmd.Flags().BoolVarP(&zipBuild, "zip", "z", false, "Zip final build folder")
	buildCmd.Flags().StringVarP(&editorPath, "aseprite", "a", "", "Install location of Aseprite")
	buildCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest describing the pack layout (default from TEXPACK_MANIFEST or file_structure.json)")
	buildCmd.Flags().StringVar(&packName, "pack-name", "", "Suffix of the zip archive name (default from TEXPACK_PACK_NAME or Better_than_Noise)")

	// Inspect command flags
	inspectCmd.Flags().BoolVar(&withMetadata, "metadata", false, "Also print image dimensions read with exiftool")

	// Publish command flags
	publishCmd.Flags().StringVarP(&publishKey, "key", "k", "", "Object key, defaults to the archive file name")

	rootCmd.AddCommand(buildCmd, cleanCmd, inspectCmd, publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) {
	opts := buildOptions(cfg, cmd)
	if err := opts.Classifier.Validate(); err != nil {
		logger.Error("Invalid threshold", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting texture pack build", "manifest", opts.ManifestPath, "location", opts.Location)
	summary, err := pack.NewBuilder().Build(context.Background(), opts)
	if err != nil {
		logger.Error("Build failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Build completed successfully",
		"build_dir", summary.BuildDir,
		"exported", summary.Exported,
		"skipped_sources", len(summary.SkippedSources),
		"removed", summary.Removed,
		"unclassified", summary.Unclassified,
		"images", summary.Images,
		"archive", summary.Archive)
}

func runClean(cmd *cobra.Command, args []string) {
	dir := args[0]

	if err := pack.NewFileStats().ValidateDirectory(dir); err != nil {
		logger.Error("Directory validation failed", "error", err)
		os.Exit(1)
	}

	opts := pack.CleanOptions{
		Classifier:     classifierConfig(cfg, cmd),
		MaxConcurrency: cfg.MaxConcurrency,
		Verbose:        verbose,
		DryRun:         dryRun,
	}
	if cmd.Flags().Changed("max-concurrent") {
		opts.MaxConcurrency = maxConcurrent
	}

	report, err := pack.NewCleaner().RemoveEmptyImages(context.Background(), dir, opts)
	if err != nil {
		logger.Error("Clean failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Clean completed", "scanned", report.Scanned, "removed", len(report.Removed), "unclassified", len(report.Skipped))
}

func runInspect(cmd *cobra.Command, args []string) {
	classifier := classifierConfig(cfg, cmd)
	if err := classifier.Validate(); err != nil {
		logger.Error("Invalid threshold", "error", err)
		os.Exit(1)
	}

	if !inspectImages(args, classifier) {
		os.Exit(1)
	}
}

// inspectImages prints one line per image and reports whether every path existed.
func inspectImages(paths []string, classifier pack.ClassifierConfig) bool {
	var reader pack.MetadataReader
	if withMetadata {
		et, err := exiftool.NewExiftool()
		if err != nil {
			logger.Error("Failed to initialise exiftool", "error", err)
			return false
		}
		defer et.Close()
		reader = pack.NewMetadataReader(et)
	}

	ok := true
	for _, path := range paths {
		fmt.Println(describeImage(path, classifier, reader))
		if _, err := os.Stat(path); err != nil {
			ok = false
		}
	}
	return ok
}

func runPublish(cmd *cobra.Command, args []string) {
	archive := args[0]
	bucket := cfg.Bucket
	if len(args) == 2 {
		bucket = args[1]
	}
	if bucket == "" {
		logger.Error("No bucket given (pass BUCKET or set TEXPACK_BUCKET)")
		os.Exit(1)
	}

	if info, err := os.Stat(archive); err != nil {
		logger.Error("Archive does not exist", "path", archive, "error", err)
		os.Exit(1)
	} else if info.IsDir() {
		logger.Error("Archive path is a directory", "path", archive)
		os.Exit(1)
	}

	ctx := context.Background()
	publisher, err := pack.NewPublisher(ctx)
	if err != nil {
		logger.Error("Failed to initialise publisher", "error", err)
		os.Exit(1)
	}

	result, err := publisher.Publish(ctx, archive, bucket, publishKey)
	if err != nil {
		logger.Error("Publish failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Publish completed successfully", "bucket", result.Bucket, "key", result.Key, "uploaded", result.Uploaded)
}

// classifierConfig applies the --threshold flag over the configured threshold.
func classifierConfig(cfg *config.Config, cmd *cobra.Command) pack.ClassifierConfig {
	classifier := pack.DefaultClassifierConfig()
	classifier.Threshold = cfg.Threshold
	if cmd.Flags().Changed("threshold") {
		classifier.Threshold = threshold
	}
	return classifier
}

// buildOptions merges configuration and build flags, flags winning.
func buildOptions(cfg *config.Config, cmd *cobra.Command) pack.BuildOptions {
	opts := pack.DefaultBuildOptions()
	opts.Location = location
	opts.BuildFolder = buildFolder
	opts.Zip = zipBuild
	opts.Verbose = verbose
	opts.DryRun = dryRun
	opts.EditorPath = cfg.EditorPath
	opts.ManifestPath = cfg.ManifestPath
	opts.PackName = cfg.PackName
	opts.MaxConcurrency = cfg.MaxConcurrency
	opts.Classifier = classifierConfig(cfg, cmd)

	flags := cmd.Flags()
	if flags.Changed("aseprite") {
		opts.EditorPath = editorPath
	}
	if flags.Changed("manifest") {
		opts.ManifestPath = manifestPath
	}
	if flags.Changed("pack-name") {
		opts.PackName = packName
	}
	if flags.Changed("max-concurrent") {
		opts.MaxConcurrency = maxConcurrent
	}
	return opts
}

// describeImage renders one line per image for the inspect command.
func describeImage(path string, classifier pack.ClassifierConfig, reader pack.MetadataReader) string {
	verdict, err := pack.ClassifyFile(path, classifier, false)
	if err != nil {
		return fmt.Sprintf("%s: cannot classify (%v)", path, err)
	}

	state := "has content"
	if verdict.IsEmpty {
		state = "EMPTY"
	}
	line := fmt.Sprintf("%s: %s, %d/%d = %.2f%% zero bytes", path, state, verdict.ZeroCount, verdict.DeclaredLength, verdict.Ratio)

	if reader != nil {
		info, err := reader.ReadImageInfo(path)
		if err != nil {
			line += fmt.Sprintf(" (metadata unavailable: %v)", err)
		} else {
			line += fmt.Sprintf(" [%dx%d, %d-bit %s]", info.Width, info.Height, info.BitDepth, info.ColorType)
		}
	}
	return line
}
