package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the object-store backend. Endpoint supports
// S3-compatible services (MinIO, R2, Spaces), not only AWS.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// S3Store uploads artifacts under a bucket key and constructs public URLs
// from the configured endpoint.
type S3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewS3Store builds an S3 client with static credentials and path-style
// addressing so S3-compatible endpoints resolve correctly.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: s3 bucket is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("storage: s3 endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

// Save uploads the bytes under name with a content type inferred from the
// name's extension.
func (s *S3Store) Save(ctx context.Context, name string, data []byte) error {
	clean, err := sanitizeName(name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(clean),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(clean)),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %q: %w", clean, err)
	}
	return nil
}

// URL constructs the public endpoint URL for name.
func (s *S3Store) URL(name string) string {
	return s.endpoint + "/" + s.bucket + "/" + name
}

// Delete removes the object. S3 deletes are idempotent, so a missing key is
// already treated as success by the service.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	clean, err := sanitizeName(name)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(clean),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %q: %w", clean, err)
	}
	return nil
}

// contentTypeFor maps a file extension to its MIME type, defaulting to a
// generic binary type for anything unrecognized.
func contentTypeFor(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

var _ Store = (*S3Store)(nil)
