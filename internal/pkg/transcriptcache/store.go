package transcriptcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// maxObjectBytes bounds a cached track read.
const maxObjectBytes = 8 << 20

// ObjectAPI is the subset of the S3 client the cache uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store reads and writes raw subtitle tracks in a bucket.
type Store struct {
	api    ObjectAPI
	bucket string
	logger zerolog.Logger
}

// NewStore creates an S3 client for the configured bucket and checks that the
// bucket is reachable.
func NewStore(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Store, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("transcript cache is disabled")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible stores (MinIO, B2) need path-style URLs
			o.UsePathStyle = true
		}
	})

	store := NewStoreWithAPI(client, cfg.BucketName, logger)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.BucketName, err)
	}

	store.logger.Info().Str("bucket", cfg.BucketName).Msg("Transcript cache initialized")
	return store, nil
}

// NewStoreWithAPI wraps an existing S3 API implementation.
func NewStoreWithAPI(api ObjectAPI, bucket string, logger zerolog.Logger) *Store {
	return &Store{
		api:    api,
		bucket: bucket,
		logger: logger.With().Str("service", "TranscriptCache").Logger(),
	}
}

// Get returns the cached track. The boolean is false on a miss.
func (s *Store) Get(ctx context.Context, videoID, lang string) ([]byte, bool, error) {
	key := ObjectKey(videoID, lang)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectBytes))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}

// Put stores a track under its video and language.
func (s *Store) Put(ctx context.Context, videoID, lang string, data []byte) error {
	key := ObjectKey(videoID, lang)
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/xml"),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"video-id":      videoID,
			"upload-source": "chapterfox-transcripts",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}
