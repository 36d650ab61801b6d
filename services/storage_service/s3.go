package storage_service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config selects the bucket and how to reach it. Region and credentials
// fall back to the standard AWS configuration chain.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	UsePathStyle bool
}

// ObjectPutter is the subset of the S3 client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client ObjectPutter
	config S3Config
	logger *slog.Logger
}

func NewS3Storage(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Storage, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StorageWithClient(client, cfg, logger), nil
}

func NewS3StorageWithClient(client ObjectPutter, cfg S3Config, logger *slog.Logger) *S3Storage {
	return &S3Storage{client: client, config: cfg, logger: logger}
}

// Key builds the object key of a run file.
func (s *S3Storage) Key(runID, name string) string {
	return path.Join(strings.Trim(s.config.Prefix, "/"), runID, name)
}

// UploadFile stores a local file under key and returns its s3:// location.
func (s *S3Storage) UploadFile(ctx context.Context, localPath, key, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.config.Bucket, key)
	s.logger.Info("Uploaded file to S3",
		slog.String("path", localPath),
		slog.String("location", location))
	return location, nil
}
