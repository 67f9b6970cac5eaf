package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"pet-adoption-api/internal/ports/blob"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store implementa blob.Store contra un backend S3-compatible (AWS o
// MinIO). Un solo bucket; las keys mapean directo a object keys.
type Store struct {
	client *awss3.Client
	bucket string
	region string

	// endpoint explícito (MinIO); si está, las URLs públicas salen
	// path-style contra ese host
	endpoint string
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // opcional, para MinIO
	PathStyle bool
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Store{
		client:   client,
		bucket:   cfg.Bucket,
		region:   region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	input := &awss3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return s.publicURL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	// DeleteObject es idempotente en S3: borrar algo que no está no es error
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

func (s *Store) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

var _ blob.Store = (*Store)(nil)
