package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"alfredoptarigan/resume-analyzer/internal/config"
)

// ArchiveService keeps a copy of original uploads in object storage.
type ArchiveService interface {
	Enabled() bool
	Archive(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// ObjectPutter is the subset of the S3 client used for archiving.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3ArchiveService struct {
	client ObjectPutter
	bucket string
	prefix string
}

type noopArchiveService struct{}

// NewArchiveService builds an S3 (or R2) backed archive. With no bucket configured it
// returns an archive that does nothing.
func NewArchiveService(ctx context.Context, cfg config.ArchiveConfig) (ArchiveService, error) {
	if cfg.Bucket == "" {
		return noopArchiveService{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ArchiveService(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3ArchiveService(client ObjectPutter, bucket, prefix string) ArchiveService {
	return &s3ArchiveService{client: client, bucket: bucket, prefix: prefix}
}

func (s *s3ArchiveService) Enabled() bool { return true }

func (s *s3ArchiveService) Archive(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := path.Join(s.prefix, name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return key, nil
}

func (noopArchiveService) Enabled() bool { return false }

func (noopArchiveService) Archive(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}
