// Package s3ds reads source files from S3 or an S3-compatible store.
package s3ds

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObjectAPI is the part of *s3.Client the source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewClient loads the default AWS credential chain. A non-empty endpoint
// selects an S3-compatible store (MinIO, localstack) with path-style
// addressing.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3ds: load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Object is one S3 object used as a source.
type Object struct {
	api    GetObjectAPI
	bucket string
	key    string
}

// NewObject returns a source for s3://bucket/key.
func NewObject(api GetObjectAPI, bucket, key string) *Object {
	return &Object{api: api, bucket: bucket, key: key}
}

// Name is the last segment of the key.
func (o *Object) Name() string { return path.Base(o.key) }

// Open streams the object body.
func (o *Object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3ds: GetObject s3://%s/%s: %w", o.bucket, o.key, err)
	}
	return out.Body, nil
}
