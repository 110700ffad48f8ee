// Package store implements the ObjectStore interface against S3.
// Listing uses the ListObjectsV2 paginator; retrieval streams one object
// into memory per call. Credentials are static, resolved by the caller
// from the environment.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gaurav-prasanna/tmplscan/core"
)

// Options configures the S3 store.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible stores
	AccessKey string
	SecretKey string
}

// S3Store is an ObjectStore backed by one S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// New builds an S3Store from static credentials.
func New(ctx context.Context, opts Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: opts.Bucket}, nil
}

// List returns a pager over all objects under prefix.
func (s *S3Store) List(prefix string) core.ObjectLister {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	return &lister{paginator: paginator}
}

// Get retrieves the full byte payload of one object.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, key, err)
	}
	return body, nil
}

// lister adapts the SDK paginator to the ObjectLister interface.
type lister struct {
	paginator *s3.ListObjectsV2Paginator
}

func (l *lister) HasMorePages() bool {
	return l.paginator.HasMorePages()
}

func (l *lister) NextPage(ctx context.Context) ([]core.ObjectRef, error) {
	page, err := l.paginator.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	refs := make([]core.ObjectRef, 0, len(page.Contents))
	for _, obj := range page.Contents {
		refs = append(refs, core.ObjectRef{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}
	return refs, nil
}
