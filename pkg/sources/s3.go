package sources

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client configuration.
type S3Config struct {
	// Region is the AWS region (e.g., "us-east-1")
	Region string

	// Endpoint overrides the default S3 endpoint (for S3-compatible services)
	Endpoint string

	// UsePathStyle forces path-style addressing (for MinIO, LocalStack)
	UsePathStyle bool

	// Credentials (optional - uses default chain if not provided)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// OperationTimeout bounds each HEAD/ranged GET request.
	OperationTimeout time.Duration
}

// DefaultS3Config returns sensible defaults.
func DefaultS3Config(region string) S3Config {
	return S3Config{
		Region:           region,
		OperationTimeout: 30 * time.Second,
	}
}

// NewS3Client builds an SDK client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// S3Source exposes an S3 object as a random-access byte source. Each
// ReadAt issues a ranged GetObject, which maps directly onto the
// offset+length read contract the detector needs, so objects are never
// downloaded whole.
type S3Source struct {
	ctx     context.Context
	client  *s3.Client
	bucket  string
	key     string
	size    int64
	timeout time.Duration
}

// NewS3Source resolves the object size with a HEAD request. ctx is
// retained for the per-read requests issued by ReadAt, which has no
// context parameter of its own.
func NewS3Source(ctx context.Context, client *s3.Client, bucket, key string, timeout time.Duration) (*S3Source, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	headCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	head, err := client.HeadObject(headCtx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head s3://%s/%s: %w", bucket, key, err)
	}

	return &S3Source{
		ctx:     ctx,
		client:  client,
		bucket:  bucket,
		key:     key,
		size:    aws.ToInt64(head.ContentLength),
		timeout: timeout,
	}, nil
}

// Path returns the s3:// URL of the object.
func (s *S3Source) Path() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Size returns the object size reported by HEAD.
func (s *S3Source) Size() int64 { return s.size }

// ReadAt fetches len(p) bytes starting at off with a ranged GetObject.
func (s *S3Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	// HTTP ranges are inclusive on both ends.
	byteRange := fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(byteRange),
	})
	if err != nil {
		return 0, fmt.Errorf("get s3://%s/%s range %s: %w", s.bucket, s.key, byteRange, err)
	}
	defer out.Body.Close()

	return io.ReadFull(out.Body, p)
}

// ParseS3URL splits an s3://bucket/key URL.
func ParseS3URL(raw string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URL: %s", raw)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 URL: %s", raw)
	}
	return bucket, key, nil
}
