// pkg/archive/archive.go

package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// Sink stores a rendered document under name and reports where it went.
type Sink interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes documents into a local directory.
type DirSink struct {
	Dir string
}

// Store writes data to Dir/name, creating Dir if needed.
func (s DirSink) Store(_ context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// S3Sink uploads documents to a bucket.
type S3Sink struct {
	Bucket   string
	Prefix   string
	Uploader s3manageriface.UploaderAPI
}

// NewS3Sink builds an S3Sink backed by a session for region.
func NewS3Sink(region, bucket, prefix string) (*S3Sink, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("s3 archive: bucket is required")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 archive: session: %w", err)
	}
	return &S3Sink{Bucket: bucket, Prefix: prefix, Uploader: s3manager.NewUploader(sess)}, nil
}

// Store uploads data and returns its s3:// location.
func (s *S3Sink) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := path.Join(s.Prefix, name)
	_, err := s.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", s.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.Bucket, key), nil
}

// Discard drops documents; used when the caller only wants the bytes.
type Discard struct{}

// Store does nothing.
func (Discard) Store(context.Context, string, []byte) (string, error) { return "", nil }

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
