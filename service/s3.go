package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore is where inventory exports are written.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration, responseFilename string) (string, error)
}

type S3Service struct {
	client *s3.Client
	bucket string
}

func NewS3Service(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Service, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &S3Service{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Put writes body to key, replacing any existing object.
func (s *S3Service) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

// PresignedGetURL returns a temporary download URL for key. A non-empty
// responseFilename is sent back as the attachment name.
func (s *S3Service) PresignedGetURL(ctx context.Context, key string, expiry time.Duration, responseFilename string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if responseFilename != "" {
		safe := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(responseFilename)
		input.ResponseContentDisposition = aws.String(`attachment; filename="` + safe + `"`)
	}
	req, err := s3.NewPresignClient(s.client).PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
