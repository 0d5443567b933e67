package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/vango-dev/vcache/internal/errors"
)

// S3API is the subset of *s3.Client the S3 backend uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Backend stores snapshots as objects in an S3 bucket.
//
// Example usage:
//
//	client := snapshot.NewS3Client(snapshot.S3ClientOptions{Region: "eu-west-1"})
//	backend := snapshot.NewS3Backend(client, "my-bucket", "vcache/")
type S3Backend struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Backend creates an S3 backend.
//
// Parameters:
//   - client: an *s3.Client or any S3API implementation
//   - bucket: S3 bucket name
//   - prefix: key prefix for snapshot objects (e.g., "snapshots/")
func NewS3Backend(client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Save uploads the snapshot.
func (s *S3Backend) Save(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.New("C012").WithDetail("s3 put %s", s.key(name)).Wrap(err)
	}
	return nil
}

// Load downloads the snapshot.
func (s *S3Backend) Load(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errors.New("C010").WithDetail("%s", s.key(name))
		}
		return nil, errors.New("C012").WithDetail("s3 get %s", s.key(name)).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("C012").Wrap(err)
	}
	return data, nil
}

// List returns the snapshot names under the prefix.
func (s *S3Backend) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("C012").WithDetail("s3 list %s", s.prefix).Wrap(err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rest := strings.TrimPrefix(key, s.prefix)
			if rest == key && s.prefix != "" {
				continue
			}
			if strings.Contains(rest, "/") || !strings.HasSuffix(rest, fileExt) {
				continue
			}
			names = append(names, strings.TrimSuffix(rest, fileExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *S3Backend) key(name string) string {
	return s.prefix + name + fileExt
}

// S3ClientOptions configures NewS3Client.
type S3ClientOptions struct {
	// Region is the AWS region (required).
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string

	// UsePathStyle addresses buckets as path segments instead of hosts.
	UsePathStyle bool
}

// NewS3Client builds an S3 client using credentials from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Client(opts S3ClientOptions) *s3.Client {
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("C012").WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}, nil
	})

	return s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  aws.NewCredentialsCache(creds),
		UsePathStyle: opts.UsePathStyle,
		BaseEndpoint: endpoint(opts.Endpoint),
	})
}

func endpoint(e string) *string {
	if e == "" {
		return nil
	}
	return aws.String(e)
}
