package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Storage.
// It lets tests substitute a fake client.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner is the subset of s3.PresignClient used by S3Storage.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage implements Storage using S3-compatible object storage.
type S3Storage struct {
	client    S3API
	presigner Presigner
	cfg       Config
}

// New creates a new S3Storage with the given configuration.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain (environment, shared config, instance role) applies.
func New(ctx context.Context, cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.staticCredentials() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", ErrInvalidConfig, err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, opts...)

	return NewWithClient(cfg, client, s3.NewPresignClient(client))
}

// NewWithClient creates an S3Storage around an existing client and presigner.
func NewWithClient(cfg Config, client S3API, presigner Presigner) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if client == nil || presigner == nil {
		return nil, ErrInvalidConfig
	}

	return &S3Storage{
		client:    client,
		presigner: presigner,
		cfg:       cfg,
	}, nil
}

// Bucket returns the name of the backing bucket.
func (s *S3Storage) Bucket() string {
	return s.cfg.Bucket
}

// PresignPut generates a pre-signed PUT URL for the key.
func (s *S3Storage) PresignPut(ctx context.Context, key string, opts ...URLOption) (string, error) {
	o := newURLOptions(opts...)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	result, err := s.presigner.PresignPutObject(ctx, input, withPresignExpiry(o))
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}

	return result.URL, nil
}

// PresignGet generates a pre-signed GET URL for the key.
func (s *S3Storage) PresignGet(ctx context.Context, key string, opts ...URLOption) (string, error) {
	o := newURLOptions(opts...)

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	// Add Content-Disposition for downloads.
	if o.downloadName != "" {
		disposition := fmt.Sprintf("attachment; filename=%q", o.downloadName)
		input.ResponseContentDisposition = aws.String(disposition)
	}

	result, err := s.presigner.PresignGetObject(ctx, input, withPresignExpiry(o))
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}

	return result.URL, nil
}

func withPresignExpiry(o *urlOptions) func(*s3.PresignOptions) {
	return func(po *s3.PresignOptions) {
		po.Expires = o.expiry
	}
}

// Exists checks whether an object exists without downloading it.
// Telling absence from denial requires s3:ListBucket; see the package docs.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	if _, err := s.client.HeadObject(ctx, input); err != nil {
		err = wrapS3Error(err, ErrHeadFailed)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Walk lists every object under prefix, page by page, and calls fn for each.
func (s *S3Storage) Walk(ctx context.Context, prefix string, fn WalkFunc, opts ...ListOption) error {
	o := newListOptions(opts...)

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.cfg.Bucket),
		MaxKeys: aws.Int32(o.maxKeys),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if o.delimiter != "" {
		input.Delimiter = aws.String(o.delimiter)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return wrapS3Error(err, ErrListFailed)
		}

		for _, item := range page.Contents {
			obj := Object{
				Key:  aws.ToString(item.Key),
				Size: aws.ToInt64(item.Size),
			}
			if item.LastModified != nil {
				obj.LastModified = *item.LastModified
			}
			if err := fn(obj); err != nil {
				return err
			}
		}
	}

	return nil
}

// Delete removes a file from S3.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	if _, err := s.client.DeleteObject(ctx, input); err != nil {
		err = wrapS3Error(err, ErrDeleteFailed)
		// Some S3-compatible stores answer 404 for absent keys.
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	return nil
}

// Ping verifies that the bucket is reachable with the configured credentials.
// Suitable as a readiness check.
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err != nil {
		return wrapS3Error(err, ErrBucketProbe)
	}
	return nil
}

// Ensure S3Storage implements Storage.
var _ Storage = (*S3Storage)(nil)
