package s3

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// Client wraps the S3 client for the MinIO inbox.
type Client struct {
	s3 *s3.Client
}

// NewClient creates a client for an S3-compatible MinIO endpoint. MinIO
// serves buckets under the endpoint path, so path-style addressing is
// forced. insecureSkipVerify disables TLS verification for endpoints with
// self-signed certificates.
func NewClient(endpoint, region, accessKey, secretKey string, insecureSkipVerify bool) (*Client, error) {
	loadOptions := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	}
	if insecureSkipVerify {
		loadOptions = append(loadOptions, config.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in via --no-verify
			},
		}))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{s3: client}, nil
}

// ObjectKey returns the key to upload under: the explicit key when given,
// otherwise a random UUID-based name carrying the file's extension, nested
// under the optional prefix.
func ObjectKey(explicit, prefix, path string) string {
	if explicit != "" {
		return explicit
	}
	name := uuid.NewString() + filepath.Ext(path)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// ContentTypeFor guesses the upload content type from the file extension.
func ContentTypeFor(path string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// UploadResult is what the service reports back for a stored object.
type UploadResult struct {
	Key         string
	ETag        string
	Size        int64
	ContentType string
}

// Upload streams a local file into the bucket and confirms the stored
// object with a follow-up HEAD. ETag and size come from the service, not
// from the local file.
func (c *Client) Upload(ctx context.Context, bucket, key, path string) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	contentType := ContentTypeFor(path)
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucket, err)
	}

	head, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm object %s in bucket %s: %w", key, bucket, err)
	}

	return &UploadResult{
		Key:         key,
		ETag:        strings.Trim(aws.ToString(head.ETag), `"`),
		Size:        aws.ToInt64(head.ContentLength),
		ContentType: contentType,
	}, nil
}

// CreateBucket creates the bucket. A bucket that already exists and is
// owned by us counts as success.
func (c *Client) CreateBucket(ctx context.Context, bucketName string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return nil
}

// BucketExists checks if a bucket exists and is accessible.
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// isBucketAlreadyOwnedByYou checks if the error indicates the bucket exists
// and is owned by us. MinIO does not always return the exact SDK error
// types, so the API error code is checked as a fallback.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var alreadyOwned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &alreadyOwned) {
		return true
	}

	var alreadyExists *types.BucketAlreadyExists
	if errors.As(err, &alreadyExists) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists"
	}

	return false
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}

	return false
}
