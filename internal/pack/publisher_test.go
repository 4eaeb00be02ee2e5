package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	headETag *string
	headErr  error
	putErr   error
	puts     map[string][]byte
}

func (f *fakeS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{ETag: f.headETag}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func writeArchive(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BUILD_Better_than_Noise.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip bytes"), 0644))
	hash, err := calculateMD5(path)
	require.NoError(t, err)
	return path, hash
}

func TestCalculateMD5(t *testing.T) {
	path, hash := writeArchive(t)
	assert.Equal(t, "91e39f164925e8b875b65c81497a0106", hash, path)
}

func TestPublish_UploadsWhenMissing(t *testing.T) {
	path, hash := writeArchive(t)
	client := &fakeS3{headErr: &types.NotFound{}}

	result, err := (&s3Publisher{client: client}).Publish(context.Background(), path, "packs", "")
	require.NoError(t, err)

	assert.True(t, result.Uploaded)
	assert.Equal(t, "BUILD_Better_than_Noise.zip", result.Key)
	assert.Equal(t, hash, result.Hash)
	assert.Equal(t, []byte("zip bytes"), client.puts["packs/BUILD_Better_than_Noise.zip"])
}

func TestPublish_SkipsMatchingObject(t *testing.T) {
	path, hash := writeArchive(t)
	client := &fakeS3{headETag: aws.String(`"` + hash + `"`)}

	result, err := (&s3Publisher{client: client}).Publish(context.Background(), path, "packs", "release.zip")
	require.NoError(t, err)

	assert.False(t, result.Uploaded)
	assert.Equal(t, "release.zip", result.Key)
	assert.Empty(t, client.puts)
}

func TestPublish_MismatchedObject(t *testing.T) {
	path, _ := writeArchive(t)
	client := &fakeS3{headETag: aws.String(`"0123"`)}

	_, err := (&s3Publisher{client: client}).Publish(context.Background(), path, "packs", "")
	require.ErrorIs(t, err, ErrRemoteMismatch)
	assert.Empty(t, client.puts)
}

func TestPublish_HeadFails(t *testing.T) {
	path, _ := writeArchive(t)
	client := &fakeS3{headErr: errors.New("access denied")}

	_, err := (&s3Publisher{client: client}).Publish(context.Background(), path, "packs", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check S3 object existence")
}

func TestPublish_PutFails(t *testing.T) {
	path, _ := writeArchive(t)
	client := &fakeS3{headErr: &types.NotFound{}, putErr: errors.New("slow down")}

	_, err := (&s3Publisher{client: client}).Publish(context.Background(), path, "packs", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload to S3")
}

func TestPublish_NoBucket(t *testing.T) {
	path, _ := writeArchive(t)

	_, err := (&s3Publisher{client: &fakeS3{}}).Publish(context.Background(), path, "", "")
	assert.Error(t, err)
}

func TestPublish_MissingArchive(t *testing.T) {
	_, err := (&s3Publisher{client: &fakeS3{}}).Publish(context.Background(), filepath.Join(t.TempDir(), "none.zip"), "packs", "")
	assert.Error(t, err)
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"typed not found", &types.NotFound{}, true},
		{"wrapped typed not found", fmt.Errorf("head: %w", &types.NotFound{}), true},
		{"api error NotFound", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"api error NoSuchKey", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"api error AccessDenied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}, false},
		{"status code in message", errors.New("operation error S3: HeadObject, StatusCode: 404"), true},
		{"other error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isNotFoundError(tt.err))
		})
	}
}
