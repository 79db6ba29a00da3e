package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// BlobStore archives uploaded source files.
type BlobStore interface {
	Enabled() bool
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// NewBlobStore returns an S3 store, or a no-op store when no bucket is set.
func NewBlobStore(cfg *config.Config) BlobStore {
	if cfg.S3Bucket == "" {
		return NoopBlobStore{}
	}
	return NewS3BlobStore(cfg)
}

// StorageKey builds users/<account>/<yyyy>/<mm>/<dd>/<uuid>.
func StorageKey(accountID string, now time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%s", accountID, now.Year(), now.Month(), now.Day(), uuid.New())
}

type S3BlobStore struct {
	bucket    string
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

func NewS3BlobStore(cfg *config.Config) *S3BlobStore {
	return &S3BlobStore{
		bucket:    cfg.S3Bucket,
		region:    cfg.S3Region,
		accessKey: cfg.S3AccessKey,
		secretKey: cfg.S3SecretKey,
		endpoint:  cfg.S3BaseEndpoint,
	}
}

func (s *S3BlobStore) Enabled() bool { return true }

func (s *S3BlobStore) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.region)}
	if s.accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3BlobStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}
	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PresignGet returns a GET URL valid for 15 minutes.
func (s *S3BlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return "", err
	}
	req, err := presignGetObject(newS3PresignClient(c), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

type NoopBlobStore struct{}

func (NoopBlobStore) Enabled() bool { return false }

func (NoopBlobStore) Put(context.Context, string, string, []byte) error { return nil }

func (NoopBlobStore) PresignGet(context.Context, string) (string, error) { return "", nil }
