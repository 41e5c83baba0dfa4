package blob

import (
	"bytes"   // Upload body
	"context" // Request scoped storage calls
	"fmt"     // Error wrapping
	"strings" // Prefix handling
	"time"    // Presign expiry

	"github.com/aws/aws-sdk-go-v2/aws"         // AWS core types
	"github.com/aws/aws-sdk-go-v2/config"      // Default config loading
	"github.com/aws/aws-sdk-go-v2/credentials" // Static credentials
	"github.com/aws/aws-sdk-go-v2/service/s3"  // S3 client and presigner
	"github.com/sirupsen/logrus"               // Logrus for structured logging
)

// S3Options configures an S3 compatible backend
type S3Options struct {
	Bucket    string // Bucket holding every client prefix
	Region    string // Bucket region
	Endpoint  string // Optional endpoint, switches to path-style addressing
	AccessKey string // Static access key; empty uses the default chain
	SecretKey string // Static secret key
}

// S3Store maps containers to key prefixes inside one bucket
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store loads AWS config and builds the client and presigner
func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }), // No automatic retries
	}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true // MinIO style endpoints
		}
	})
	return &S3Store{client: client, presign: s3.NewPresignClient(client), bucket: o.Bucket}, nil
}

func objectKey(container, key string) string {
	return container + "/" + key
}

// Put writes one object
func (s *S3Store) Put(ctx context.Context, container, key string, data []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(container, key)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", objectKey(container, key), err)
	}
	logrus.WithFields(logrus.Fields{
		"bucket": s.bucket,                  // Target bucket
		"key":    objectKey(container, key), // Object key
		"size":   len(data),                 // Bytes written
	}).Debug("Uploaded blob to S3")
	return nil
}

// SignedURL presigns a GET valid for ttl
func (s *S3Store) SignedURL(ctx context.Context, container, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(container, key)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectKey(container, key), err)
	}
	return req.URL, nil
}

// List enumerates the objects under the container prefix
func (s *S3Store) List(ctx context.Context, container string) ([]Info, error) {
	prefix := container + "/"
	var out []Info
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list prefix %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, Info{
				Key:          strings.TrimPrefix(aws.ToString(obj.Key), prefix),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

// Delete removes one object
func (s *S3Store) Delete(ctx context.Context, container, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(container, key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey(container, key), err)
	}
	return nil
}
