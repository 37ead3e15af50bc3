package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	pathpkg "path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API an [S3Store] calls.
// [s3.Client] satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store is a FileStore rooted at a key prefix of an S3 (or MinIO, R2)
// bucket. Fragment libraries shared between machines and batch outputs can
// both live there.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 returns a store for s3://bucket/prefix. Leading and trailing
// slashes of prefix are ignored.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.prefix == "" {
		return path
	}
	return pathpkg.Join(s.prefix, path)
}

// Read fetches the object at path. A missing key yields an error wrapping
// os.ErrNotExist.
func (s *S3Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if isS3NotFound(err) {
		return nil, fmt.Errorf("storage: %s/%s: %w", s, path, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s/%s: %w", s, path, err)
	}
	return out.Body, nil
}

// Write buffers the object in memory and uploads it when the writer is
// closed. Word files are a few hundred kilobytes, so a sized PutObject
// works against endpoints that reject unsigned streaming bodies.
func (s *S3Store) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	return &s3Object{ctx: ctx, store: s, path: path}, nil
}

// Delete removes the object at path. Missing keys are not an error.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("storage: delete %s/%s: %w", s, path, err)
	}
	return nil
}

// Exists asks HeadObject whether path is present.
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	switch {
	case err == nil:
		return true, nil
	case isS3NotFound(err):
		return false, nil
	}
	return false, fmt.Errorf("storage: head %s/%s: %w", s, path, err)
}

// Version returns the object's ETag, or its size and modification time when
// the endpoint sends no ETag.
func (s *S3Store) Version(ctx context.Context, path string) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if isS3NotFound(err) {
		return "", fmt.Errorf("storage: %s/%s: %w", s, path, os.ErrNotExist)
	}
	if err != nil {
		return "", fmt.Errorf("storage: head %s/%s: %w", s, path, err)
	}
	if etag := aws.ToString(out.ETag); etag != "" {
		return etag, nil
	}
	return fmt.Sprintf("%d-%d", aws.ToInt64(out.ContentLength), aws.ToTime(out.LastModified).UnixNano()), nil
}

// String returns the store location as an s3:// URI.
func (s *S3Store) String() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// s3Object collects written bytes until Close uploads them.
type s3Object struct {
	ctx   context.Context
	store *S3Store
	path  string

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (o *s3Object) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0, os.ErrClosed
	}
	return o.buf.Write(p)
}

func (o *s3Object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return os.ErrClosed
	}
	o.closed = true

	_, err := o.store.client.PutObject(o.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(o.store.bucket),
		Key:           aws.String(o.store.key(o.path)),
		Body:          bytes.NewReader(o.buf.Bytes()),
		ContentLength: aws.Int64(int64(o.buf.Len())),
		ContentType:   aws.String(contentType(o.path)),
	})
	if err != nil {
		return fmt.Errorf("storage: put %s/%s: %w", o.store, o.path, err)
	}
	return nil
}

// Discard drops the buffered bytes without uploading.
func (o *s3Object) Discard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.buf.Reset()
	return nil
}

func contentType(path string) string {
	switch strings.ToLower(pathpkg.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var (
	_ FileStore = (*S3Store)(nil)
	_ Versioner = (*S3Store)(nil)
)
