package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"blogapi/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ImageStorage keeps uploaded images. PublicID is the storage key that
// Remove expects.
type ImageStorage interface {
	Upload(ctx context.Context, body io.Reader, size int64, contentType, filename string) (models.Image, error)
	Remove(ctx context.Context, publicID string) error
	RemoveMany(ctx context.Context, publicIDs []string) error
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL prefixes object keys to build the served URL.
	PublicURL string
}

// S3Storage stores images in an S3 compatible bucket (AWS, MinIO, R2).
type S3Storage struct {
	client    s3API
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}
	return &S3Storage{client: client, bucket: opts.Bucket, publicURL: publicURL}, nil
}

// imageKey builds a unique object key, keeping the upload's extension.
func imageKey(filename string) string {
	d := time.Now()
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("images/%d/%02d/%s%s", d.Year(), d.Month(), uuid.New(), ext)
}

func (s *S3Storage) Upload(ctx context.Context, body io.Reader, size int64, contentType, filename string) (models.Image, error) {
	key := imageKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return models.Image{URL: s.publicURL + "/" + key, PublicID: key}, nil
}

func (s *S3Storage) Remove(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", publicID, err)
	}
	return nil
}

func (s *S3Storage) RemoveMany(ctx context.Context, publicIDs []string) error {
	objects := make([]types.ObjectIdentifier, 0, len(publicIDs))
	for _, id := range publicIDs {
		if id != "" {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(id)})
		}
	}
	if len(objects) == 0 {
		return nil
	}
	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("remove %d images: %w", len(objects), err)
	}
	return nil
}
