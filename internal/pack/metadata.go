package pack

import (
	"fmt"

	"github.com/barasher/go-exiftool"
)

// ImageInfo holds the header fields reported for an exported image.
type ImageInfo struct {
	Width     int64
	Height    int64
	BitDepth  int64
	ColorType string
}

// MetadataReader defines the interface for reading image header metadata
type MetadataReader interface {
	// ReadImageInfo returns dimensions and pixel format of an image
	ReadImageInfo(filePath string) (ImageInfo, error)
}

// exifMetadataReader implements the MetadataReader interface
type exifMetadataReader struct {
	et *exiftool.Exiftool
}

// NewMetadataReader creates a MetadataReader backed by a running exiftool
func NewMetadataReader(et *exiftool.Exiftool) MetadataReader {
	return &exifMetadataReader{et: et}
}

// ReadImageInfo reads the image header through exiftool
func (r *exifMetadataReader) ReadImageInfo(filePath string) (ImageInfo, error) {
	if r.et == nil {
		return ImageInfo{}, fmt.Errorf("exiftool not initialised")
	}

	fileInfos := r.et.ExtractMetadata(filePath)
	if len(fileInfos) == 0 {
		return ImageInfo{}, fmt.Errorf("no metadata returned for %s", filePath)
	}
	if fileInfos[0].Err != nil {
		return ImageInfo{}, fmt.Errorf("failed to read metadata for %s: %w", filePath, fileInfos[0].Err)
	}

	fm := fileInfos[0]
	var info ImageInfo
	var err error
	if info.Width, err = fm.GetInt("ImageWidth"); err != nil {
		return ImageInfo{}, fmt.Errorf("no ImageWidth for %s: %w", filePath, err)
	}
	if info.Height, err = fm.GetInt("ImageHeight"); err != nil {
		return ImageInfo{}, fmt.Errorf("no ImageHeight for %s: %w", filePath, err)
	}
	// Optional fields
	info.BitDepth, _ = fm.GetInt("BitDepth")
	info.ColorType, _ = fm.GetString("ColorType")
	return info, nil
}
