package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/finsight-ai/finsightctl/internal/gitops"
	"github.com/finsight-ai/finsightctl/internal/pipeline"
	"github.com/finsight-ai/finsightctl/internal/platform/s3"
)

// inboxClient is the slice of the object storage client the upload flow uses.
type inboxClient interface {
	Upload(ctx context.Context, bucket, key, path string) (*s3.UploadResult, error)
	CreateBucket(ctx context.Context, bucket string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// newInboxClient connects to the MinIO inbox. Replaced in tests.
var newInboxClient = func(endpoint, region, accessKey, secretKey string, insecureSkipVerify bool) (inboxClient, error) {
	return s3.NewClient(endpoint, region, accessKey, secretKey, insecureSkipVerify)
}

// PipelineApplyOptions configures the eventing chain apply.
type PipelineApplyOptions struct {
	ConfigPath string
	Kubeconfig string
	DryRun     bool
}

// PipelineApply applies the broker, source, and trigger that route inbox
// notifications to the handler service. With DryRun the rendered manifests
// are printed and the cluster is never contacted.
func PipelineApply(ctx context.Context, opts PipelineApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	chain := pipeline.NewChain(cfg.Pipeline)

	if opts.DryRun {
		rendered, err := chain.Render()
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	}

	client, err := newKubeClient(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	created, err := gitops.NewEnsurer(client).EnsureNamespace(ctx, cfg.Pipeline.Namespace)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created namespace %s\n", cfg.Pipeline.Namespace)
	}

	applied, err := pipeline.NewApplier(client).Apply(ctx, chain)
	if err != nil {
		return err
	}

	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	fmt.Printf("\nPipeline chain applied to namespace %s.\n", cfg.Pipeline.Namespace)
	fmt.Printf("Test the wiring with:\n")
	fmt.Printf("  finsightctl pipeline upload <file>\n")
	return nil
}

// PipelineUploadOptions configures the inbox upload smoke test.
type PipelineUploadOptions struct {
	ConfigPath   string
	FilePath     string
	Endpoint     string
	Bucket       string
	ObjectKey    string
	Prefix       string
	EnsureBucket bool
	NoVerify     bool
	DryRun       bool
}

// PipelineUpload uploads a local file to the MinIO inbox, which exercises
// the full chain end to end when the eventing wiring is in place.
//
// Credentials are read from MINIO_ACCESS_KEY and MINIO_SECRET_KEY only;
// they are never stored in or read from the config file.
func PipelineUpload(ctx context.Context, opts PipelineUploadOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	minio := cfg.Pipeline.MinIO
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = minio.Endpoint
	}
	bucket := opts.Bucket
	if bucket == "" {
		bucket = minio.Bucket
	}

	info, err := os.Stat(opts.FilePath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", opts.FilePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", opts.FilePath)
	}

	key := s3.ObjectKey(opts.ObjectKey, opts.Prefix, opts.FilePath)

	if opts.DryRun {
		fmt.Printf("Would upload %s (%d bytes, %s)\n",
			opts.FilePath, info.Size(), s3.ContentTypeFor(opts.FilePath))
		fmt.Printf("  endpoint: %s\n", endpoint)
		fmt.Printf("  bucket:   %s\n", bucket)
		fmt.Printf("  key:      %s\n", key)
		return nil
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set")
	}

	client, err := newInboxClient(endpoint, minio.Region, accessKey, secretKey, opts.NoVerify)
	if err != nil {
		return fmt.Errorf("failed to create inbox client: %w", err)
	}

	if opts.EnsureBucket {
		if err := client.CreateBucket(ctx, bucket); err != nil {
			return err
		}
	} else {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("bucket %s does not exist (use --ensure-bucket to create it)", bucket)
		}
	}

	result, err := client.Upload(ctx, bucket, key, opts.FilePath)
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s\n", opts.FilePath)
	fmt.Printf("  bucket: %s\n", bucket)
	fmt.Printf("  key:    %s\n", result.Key)
	fmt.Printf("  size:   %d bytes\n", result.Size)
	fmt.Printf("  etag:   %s\n", result.ETag)
	fmt.Printf("  type:   %s\n", result.ContentType)
	fmt.Printf("\nIf the eventing chain is applied, the handler receives the bucket\nnotification within a few seconds.\n")
	return nil
}
