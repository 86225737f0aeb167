package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores raw takeout uploads in an S3 compatible bucket
type S3Archive struct {
	client objectPutter
	bucket string
}

// NewS3Archive creates an archive for bucket. Static credentials are used
// when accessKey is set, the default AWS chain otherwise. A non-empty
// endpoint selects an S3 compatible provider with path-style addressing.
func NewS3Archive(ctx context.Context, region, bucket, accessKey, secretKey, endpoint string) (*S3Archive, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: bucket}, nil
}

// Store uploads data as takeouts/{user_id}/{uuid}{ext}
func (a *S3Archive) Store(ctx context.Context, userID, filename string, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType := "application/octet-stream"
	switch ext {
	case ".json":
		contentType = "application/json"
	case ".html", ".htm":
		contentType = "text/html"
	}

	key := fmt.Sprintf("takeouts/%s/%s%s", userID, uuid.New().String(), ext)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload takeout to s3: %w", err)
	}

	return key, nil
}
