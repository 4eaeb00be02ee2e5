package pack

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acm19/texpack/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrRemoteMismatch is returned when the object key already holds a different archive.
var ErrRemoteMismatch = errors.New("remote object exists with different content")

// s3API is the subset of the S3 client used for publishing
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PublishResult describes one publish.
type PublishResult struct {
	Bucket string
	Key    string
	// Hash is the hex MD5 of the archive.
	Hash string
	// Uploaded is false when an identical object was already present.
	Uploaded bool
}

// Publisher defines the interface for publishing pack archives
type Publisher interface {
	// Publish uploads an archive unless an identical object already exists under key
	Publish(ctx context.Context, archivePath, bucket, key string) (PublishResult, error)
}

// s3Publisher implements the Publisher interface
type s3Publisher struct {
	client s3API
}

// NewPublisher creates a Publisher from the default AWS configuration chain
func NewPublisher(ctx context.Context) (Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &s3Publisher{client: s3.NewFromConfig(cfg)}, nil
}

// Publish uploads archivePath to bucket. An empty key uses the archive's file name.
func (p *s3Publisher) Publish(ctx context.Context, archivePath, bucket, key string) (PublishResult, error) {
	if bucket == "" {
		return PublishResult{}, fmt.Errorf("no bucket given")
	}
	if key == "" {
		key = filepath.Base(archivePath)
	}
	result := PublishResult{Bucket: bucket, Key: key}

	localHash, err := calculateMD5(archivePath)
	if err != nil {
		return result, fmt.Errorf("failed to calculate MD5: %w", err)
	}
	result.Hash = localHash

	headOutput, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		remoteETag := strings.Trim(aws.ToString(headOutput.ETag), `"`)
		if remoteETag == localHash {
			logger.Info("Archive already published with matching hash, skipping", "bucket", bucket, "key", key, "hash", localHash)
			return result, nil
		}
		return result, fmt.Errorf("%w for '%s' (local: %s, remote: %s). Manual intervention required", ErrRemoteMismatch, key, localHash, remoteETag)
	} else if !isNotFoundError(err) {
		return result, fmt.Errorf("failed to check S3 object existence: %w", err)
	}

	logger.Info("Uploading to S3", "bucket", bucket, "key", key, "hash", localHash)
	file, err := os.Open(archivePath)
	if err != nil {
		return result, err
	}
	defer file.Close()

	if _, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/zip"),
	}); err != nil {
		return result, fmt.Errorf("failed to upload to S3: %w", err)
	}

	result.Uploaded = true
	logger.Info("Published archive", "bucket", bucket, "key", key)
	return result, nil
}

// calculateMD5 calculates the MD5 hash of a file
func calculateMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// isNotFoundError checks if the error is a NotFound error
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey" {
			return true
		}
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "StatusCode: 404")
}
