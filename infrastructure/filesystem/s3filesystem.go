package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const KeyPrefix = "attendance/"

// S3API is the subset of the S3 client the media store uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3MediaStore keeps evidence photos in a bucket and hands out their URLs.
type S3MediaStore struct {
	client        S3API
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

func NewS3MediaStore(client S3API, bucket, region, publicBaseURL string) *S3MediaStore {
	return &S3MediaStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// ConnectS3 builds a media store from the default AWS credential chain.
func ConnectS3(ctx context.Context, bucket, region, publicBaseURL string) (*S3MediaStore, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Create an S3 client
	client := s3.NewFromConfig(cfg)
	return NewS3MediaStore(client, bucket, cfg.Region, publicBaseURL), nil
}

// Upload stores data under attendance/<yyyy>/<mm>/<uuid>.jpg and returns
// the object's URL.
func (s *S3MediaStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	now := s.now().UTC()
	key := fmt.Sprintf("%s%04d/%02d/%s.jpg", KeyPrefix, now.Year(), int(now.Month()), uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s in bucket %s: %w", key, s.bucket, err)
	}

	return s.URL(key), nil
}

func (s *S3MediaStore) URL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ListFiles returns every evidence object key in the bucket.
func (s *S3MediaStore) ListFiles(ctx context.Context) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(KeyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", s.bucket, err)
		}

		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	return keys, nil
}
