package model

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const s3Scheme = "s3://"

// ArtifactReader fetches artifact bytes from a local path or an s3://bucket/key URI.
type ArtifactReader struct {
	S3 s3iface.S3API
}

// Read returns the raw artifact content.
func (r ArtifactReader) Read(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		content, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", location, err)
		}
		return content, nil
	}

	bucket, key, err := splitS3URI(location)
	if err != nil {
		return nil, err
	}
	if r.S3 == nil {
		return nil, fmt.Errorf("no S3 client configured for artifact %s", location)
	}

	result, err := r.S3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact %s: %w", location, err)
	}
	defer result.Body.Close()

	content, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", location, err)
	}

	return content, nil
}

func splitS3URI(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 artifact location %q (want s3://bucket/key)", location)
	}
	return bucket, key, nil
}

// LoadScaler reads and parses the scaler artifact at location.
func (r ArtifactReader) LoadScaler(ctx context.Context, location string) (*LinearScaler, error) {
	content, err := r.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	return ParseScaler(content)
}

// LoadMLP reads and parses the classifier artifact at location.
func (r ArtifactReader) LoadMLP(ctx context.Context, location string) (*MLP, error) {
	content, err := r.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	return ParseMLP(content)
}
