package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Asset is a file stored on the media host.
type Asset struct {
	Key string
	URL string
}

// Uploader stores user supplied files on the media host.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*Asset, error)
}

// S3Config describes the bucket uploads go to.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

// putObjectAPI is the part of *s3.Client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader uploads files to an S3 compatible bucket (AWS, MinIO, R2).
type S3Uploader struct {
	client  putObjectAPI
	bucket  string
	baseURL string
	now     func() time.Time
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader builds an uploader from static credentials. When Endpoint is
// empty the default AWS endpoint resolution is used.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client putObjectAPI, cfg S3Config) *S3Uploader {
	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		now:     time.Now,
	}
}

// Upload streams the file to the bucket and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*Asset, error) {
	if file == nil {
		return nil, errors.New("no file to upload")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := u.objectKey(folder, file.Filename)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
	}
	if ct := file.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &Asset{Key: key, URL: u.baseURL + "/" + key}, nil
}

// objectKey builds <folder>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func (u *S3Uploader) objectKey(folder, filename string) string {
	d := u.now().UTC()
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(
		strings.Trim(folder, "/"),
		fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()),
		uuid.New().String()+ext,
	)
}

func publicBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
