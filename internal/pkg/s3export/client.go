package s3export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

const csvContentType = "text/csv"

// ObjectAPI is the part of the S3 client the exporter uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client uploads export snapshots to a bucket.
type Client struct {
	api    ObjectAPI
	config *Config
	now    func() time.Time
}

// NewClient creates a new S3 export client and checks the bucket is reachable.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 export is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services usually want path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := NewWithAPI(s3Client, cfg)
	if err := client.testConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[S3Export] Successfully initialized S3 client for bucket: %s", cfg.BucketName)
	return client, nil
}

// NewWithAPI wraps an existing S3 API implementation.
func NewWithAPI(api ObjectAPI, cfg *Config) *Client {
	return &Client{api: api, config: cfg, now: time.Now}
}

func (c *Client) testConnection(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.BucketName),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.config.BucketName, err)
	}
	return nil
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	BucketName  string `json:"bucket"`
	ObjectKey   string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// UploadCSV stores data under a timestamped key.
func (c *Client) UploadCSV(ctx context.Context, data []byte) (*UploadResult, error) {
	key := c.config.ObjectKey(c.now())
	bucket := c.config.BucketName

	log.Infof("[S3Export] Starting upload: s3://%s/%s (Size: %d bytes)", bucket, key, len(data))
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(csvContentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"upload-source": "vibesdrop-export",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[S3Export] Successfully uploaded: s3://%s/%s", bucket, key)
	return &UploadResult{
		BucketName:  bucket,
		ObjectKey:   key,
		Size:        int64(len(data)),
		ContentType: csvContentType,
	}, nil
}
