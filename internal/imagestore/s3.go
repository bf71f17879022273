package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// S3Store uploads to AWS S3 or an S3-compatible endpoint.
type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
}

// NewS3Store creates a store from static credentials. For S3-compatible
// services set Endpoint; path-style addressing is used in that case.
func NewS3Store(ctx context.Context, cfg config.ImageStoreConfig) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("bucket, access key and secret key are required for S3")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        region,
		endpoint:      cfg.Endpoint,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// Upload decodes the data URI and puts it under namespace/.
func (s *S3Store) Upload(ctx context.Context, payload, namespace string) (*UploadResult, error) {
	img, err := DecodeDataURI(payload)
	if err != nil {
		return nil, err
	}

	key, err := utils.GenerateObjectKey(namespace, img.Subtype)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(img.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	return &UploadResult{SecureURL: s.URL(key), Key: key}, nil
}

// URL returns the public URL of an object key.
func (s *S3Store) URL(key string) string {
	switch {
	case s.publicBaseURL != "":
		return objectURL(s.publicBaseURL, key)
	case s.endpoint != "":
		return objectURL(objectURL(s.endpoint, s.bucket), key)
	default:
		return objectURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region), key)
	}
}
