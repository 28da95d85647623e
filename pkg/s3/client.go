package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pdf2tsv/config"

	"github.com/aws/aws-sdk-go-v2/aws"

	s3_config "github.com/aws/aws-sdk-go-v2/config"
	s3_credentials "github.com/aws/aws-sdk-go-v2/credentials"
	s3_provider "github.com/aws/aws-sdk-go-v2/service/s3"
	s3_types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func GetClient() (*s3_provider.Client, error) {
	// Build AWS config for MinIO (S3-compatible)
	s3cfg := config.Cfg.S3
	region := s3cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3_config.LoadOptions) error{
		s3_config.WithRegion(region),
	}
	if s3cfg.AccessKey != "" && s3cfg.SecretKey != "" {
		opts = append(opts, s3_config.WithCredentialsProvider(
			s3_credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKey,
				s3cfg.SecretKey,
				"",
			),
		))
	}

	cfg, err := s3_config.LoadDefaultConfig(
		context.TODO(),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	endpoint := s3cfg.Endpoint
	client := s3_provider.NewFromConfig(cfg, func(o *s3_provider.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint) // e.g., http://localhost:9000
		}
	})
	return client, nil
}

// EnsureBucket creates bucket unless it already exists.
func EnsureBucket(ctx context.Context, client *s3_provider.Client, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3_provider.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	_, err := client.CreateBucket(ctx, &s3_provider.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var owned *s3_types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put uploads body under key in the configured bucket and returns its s3:// URI.
func Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	bucket := config.Cfg.S3.Bucket
	if bucket == "" {
		return "", errors.New("s3: no bucket configured")
	}
	client, err := GetClient()
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}
	if err := EnsureBucket(ctx, client, bucket); err != nil {
		return "", err
	}
	_, err = client.PutObject(ctx, &s3_provider.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return URI(bucket, key), nil
}

// URI formats an object location as s3://bucket/key.
func URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

func GetPresignClient() (*s3_provider.PresignClient, error) {
	client, err := GetClient()
	if err != nil {
		return nil, err
	}
	return s3_provider.NewPresignClient(client), nil
}
