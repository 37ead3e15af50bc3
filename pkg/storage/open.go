package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes an S3 or S3-compatible endpoint.
type S3Config struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// NewClient builds an S3 client. Empty keys fall back to AWS_ACCESS_KEY_ID
// and AWS_SECRET_ACCESS_KEY; with neither set requests are unsigned.
func (c S3Config) NewClient() *s3.Client {
	opts := s3.Options{
		Region:       c.Region,
		UsePathStyle: c.PathStyle,
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
	}

	ak, sk := c.AccessKey, c.SecretKey
	if ak == "" {
		ak, sk = os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if ak != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: ak, SecretAccessKey: sk, Source: "wordsplice"}, nil
		})
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}

// Options controls Open.
type Options struct {
	S3 S3Config

	// Client replaces the client built from S3.
	Client S3Client

	// Create makes a missing local directory instead of failing.
	Create bool
}

// Open opens the store at location. "s3://bucket/prefix" selects S3, any
// other value is a local directory.
func Open(location string, opts Options) (FileStore, error) {
	if location == "" {
		return nil, fmt.Errorf("storage: empty location")
	}
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		if opts.Create {
			return NewLocal(location)
		}
		return OpenLocal(location)
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("storage: missing bucket in %q", location)
	}
	client := opts.Client
	if client == nil {
		client = opts.S3.NewClient()
	}
	return NewS3(client, bucket, strings.Trim(prefix, "/")), nil
}
