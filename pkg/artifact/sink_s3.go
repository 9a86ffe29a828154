package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Sink stores artifacts as S3 objects addressed by s3://bucket/key.
type S3Sink struct {
	client S3API
}

// NewS3Sink creates a sink over an existing client.
func NewS3Sink(client S3API) *S3Sink {
	return &S3Sink{client: client}
}

// NewS3SinkFromConfig loads the default AWS configuration (environment,
// shared config files, instance roles). An empty region keeps whatever the
// chain resolves.
func NewS3SinkFromConfig(ctx context.Context, region string) (*S3Sink, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Sink(s3.NewFromConfig(cfg)), nil
}

// ParseS3Location splits s3://bucket/key into its parts.
func ParseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an s3:// URL", ErrInvalidLocation, location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q needs both bucket and key", ErrInvalidLocation, location)
	}
	return bucket, key, nil
}

// contentType picks a MIME type from the artifact extension.
func contentType(key string) string {
	switch path.Ext(key) {
	case ".graphml", ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	case ".dot", ".gv":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Put implements Sink. A single PutObject replaces the object whole.
func (s *S3Sink) Put(ctx context.Context, location string, data []byte) error {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", location, err)
	}
	return nil
}

// Get implements Sink.
func (s *S3Sink) Get(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", location, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

var _ Sink = (*S3Sink)(nil)
