package pack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// PixelDataTag is the chunk type that carries compressed pixel samples.
const PixelDataTag = "IDAT"

const (
	// DefaultThreshold is the zero-byte percentage above which an image counts as empty.
	DefaultThreshold = 20.0

	// DefaultPayloadSkip is how many bytes after the pixel-data tag are ignored before
	// counting. It stands in for the compression framing at the start of the payload
	// rather than parsing it, and only holds when the image has a single pixel-data chunk.
	DefaultPayloadSkip = 6

	// DefaultTrailerSize is how many bytes at the end of the file are ignored: the
	// pixel-data chunk checksum (4) plus the fixed 12-byte terminator chunk that always
	// follows it in exported sprites.
	DefaultTrailerSize = 16

	// MaxImageSize bounds the single read done per file. Exported sprites are tiny.
	MaxImageSize = 16 << 20
)

var (
	// ErrMalformedImage is returned when the data has no pixel-data chunk or length field.
	ErrMalformedImage    = errors.New("pack: malformed image, no pixel data chunk")
	// ErrDivisionUndefined is returned when the pixel-data chunk declares a zero length.
	ErrDivisionUndefined = errors.New("pack: declared pixel data length is zero")
)

// ClassifierConfig tunes the empty-image heuristic. The threshold and offsets were
// calibrated together against the editor's output, so change them together.
type ClassifierConfig struct {
	// Threshold is a percentage; ratios strictly above it are empty.
	Threshold float64
	// PayloadSkip is the number of bytes skipped after the pixel-data tag.
	PayloadSkip int
	// TrailerSize is the number of bytes ignored at the end of the file.
	TrailerSize int
}

// DefaultClassifierConfig returns the calibrated defaults.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Threshold:   DefaultThreshold,
		PayloadSkip: DefaultPayloadSkip,
		TrailerSize: DefaultTrailerSize,
	}
}

// Validate checks the configuration is usable.
func (c ClassifierConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %v", c.Threshold)
	}
	if c.PayloadSkip < 0 {
		return fmt.Errorf("payload skip must not be negative, got %d", c.PayloadSkip)
	}
	if c.TrailerSize < 0 {
		return fmt.Errorf("trailer size must not be negative, got %d", c.TrailerSize)
	}
	return nil
}

// Verdict is the outcome of classifying one image.
type Verdict struct {
	IsEmpty bool
	// Ratio is the percentage of zero bytes relative to the declared payload length.
	Ratio          float64
	ZeroCount      int
	DeclaredLength uint32
	// Diagnostic is only filled in verbose mode.
	Diagnostic string
}

// Classify decides whether an encoded image is a blank placeholder by counting zero
// bytes in its pixel-data payload. It never decodes the image.
//
// A missing pixel-data chunk yields ErrMalformedImage and a zero declared length yields
// ErrDivisionUndefined. Neither is a verdict: callers must leave such files alone.
func Classify(data []byte, cfg ClassifierConfig, verbose bool) (Verdict, error) {
	tagAt := bytes.Index(data, []byte(PixelDataTag))
	if tagAt < 0 {
		return Verdict{}, ErrMalformedImage
	}
	// The length field sits right before the tag
	if tagAt < 4 {
		return Verdict{}, fmt.Errorf("%w: no length field before %s", ErrMalformedImage, PixelDataTag)
	}
	declared := binary.BigEndian.Uint32(data[tagAt-4 : tagAt])

	start := tagAt + len(PixelDataTag) + cfg.PayloadSkip
	end := len(data) - cfg.TrailerSize
	var payload []byte
	if start < end {
		payload = data[start:end]
	}

	zeros := bytes.Count(payload, []byte{0})
	if declared == 0 {
		return Verdict{}, ErrDivisionUndefined
	}

	// Multiply first so whole percentages stay exact
	ratio := float64(zeros) * 100 / float64(declared)
	v := Verdict{
		IsEmpty:        ratio > cfg.Threshold,
		Ratio:          ratio,
		ZeroCount:      zeros,
		DeclaredLength: declared,
	}
	if verbose {
		v.Diagnostic = fmt.Sprintf("%d/%d = %.2f%% zero bytes in pixel data", zeros, declared, ratio)
	}
	return v, nil
}

// ClassifyFile reads one image (bounded by MaxImageSize) and classifies it.
// The file is opened read-only.
func ClassifyFile(path string, cfg ClassifierConfig, verbose bool) (Verdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return Verdict{}, fmt.Errorf("cannot open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return Verdict{}, fmt.Errorf("cannot read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return Verdict{}, fmt.Errorf("%w: larger than %d bytes", ErrMalformedImage, MaxImageSize)
	}

	v, err := Classify(data, cfg, verbose)
	if err != nil {
		return Verdict{}, fmt.Errorf("%s: %w", path, err)
	}
	if verbose {
		v.Diagnostic = path + " has " + v.Diagnostic
	}
	return v, nil
}
