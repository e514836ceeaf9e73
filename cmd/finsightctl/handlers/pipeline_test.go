package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/finsight-ai/finsightctl/internal/kube"
	"github.com/finsight-ai/finsightctl/internal/platform/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInboxClient implements inboxClient with pluggable behavior.
type fakeInboxClient struct {
	uploadFunc       func(ctx context.Context, bucket, key, path string) (*s3.UploadResult, error)
	createBucketFunc func(ctx context.Context, bucket string) error
	bucketExistsFunc func(ctx context.Context, bucket string) (bool, error)
}

func (f *fakeInboxClient) Upload(ctx context.Context, bucket, key, path string) (*s3.UploadResult, error) {
	return f.uploadFunc(ctx, bucket, key, path)
}

func (f *fakeInboxClient) CreateBucket(ctx context.Context, bucket string) error {
	return f.createBucketFunc(ctx, bucket)
}

func (f *fakeInboxClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.bucketExistsFunc(ctx, bucket)
}

// saveAndRestorePipelineFactories saves and restores pipeline factory functions.
func saveAndRestorePipelineFactories(t *testing.T) {
	origKubeClient := newKubeClient
	origInboxClient := newInboxClient

	t.Cleanup(func() {
		newKubeClient = origKubeClient
		newInboxClient = origInboxClient
	})
}

// writeSampleClip writes a small audio file and returns its path.
func writeSampleClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func TestPipelineUpload_DryRun(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")
	clip := writeSampleClip(t)

	output := captureOutput(func() {
		err := PipelineUpload(context.Background(), PipelineUploadOptions{
			FilePath: clip,
			DryRun:   true,
		})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Would upload")
	assert.Contains(t, output, "http://minio.minio.svc.cluster.local:9000")
	assert.Contains(t, output, "audio-inbox")
	assert.Contains(t, output, ".wav")
}

func TestPipelineUpload_DryRunOverrides(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")
	clip := writeSampleClip(t)

	output := captureOutput(func() {
		err := PipelineUpload(context.Background(), PipelineUploadOptions{
			FilePath:  clip,
			Endpoint:  "https://minio.example.com",
			Bucket:    "scratch",
			ObjectKey: "fixtures/clip.wav",
			DryRun:    true,
		})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "https://minio.example.com")
	assert.Contains(t, output, "scratch")
	assert.Contains(t, output, "fixtures/clip.wav")
}

func TestPipelineUpload_DryRunPrefix(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")
	clip := writeSampleClip(t)

	output := captureOutput(func() {
		err := PipelineUpload(context.Background(), PipelineUploadOptions{
			FilePath: clip,
			Prefix:   "smoke",
			DryRun:   true,
		})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "smoke/")
}

func TestPipelineUpload_MissingCredentials(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")
	clip := writeSampleClip(t)

	err := PipelineUpload(context.Background(), PipelineUploadOptions{FilePath: clip})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set")
}

func TestPipelineUpload_MissingFile(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")

	err := PipelineUpload(context.Background(), PipelineUploadOptions{
		FilePath: filepath.Join(t.TempDir(), "absent.wav"),
		DryRun:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestPipelineUpload_Directory(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")

	err := PipelineUpload(context.Background(), PipelineUploadOptions{
		FilePath: t.TempDir(),
		DryRun:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestPipelineUpload_Success(t *testing.T) {
	saveAndRestorePipelineFactories(t)
	t.Setenv("FINSIGHT_CONFIG", "")
	t.Setenv("MINIO_ACCESS_KEY", "smoke-access")
	t.Setenv("MINIO_SECRET_KEY", "smoke-secret")
	clip := writeSampleClip(t)

	var gotEndpoint, gotAccessKey, gotBucket, gotKey string
	newInboxClient = func(endpoint, _, accessKey, _ string, _ bool) (inboxClient, error) {
		gotEndpoint = endpoint
		gotAccessKey = accessKey
		return &fakeInboxClient{
			bucketExistsFunc: func(_ context.Context, _ string) (bool, error) {
				return true, nil
			},
			uploadFunc: func(_ context.Context, bucket, key, _ string) (*s3.UploadResult, error) {
				gotBucket = bucket
				gotKey = key
				return &s3.UploadResult{Key: key, ETag: "abc123", Size: 4, ContentType: "audio/wav"}, nil
			},
		}, nil
	}

	output := captureOutput(func() {
		err := PipelineUpload(context.Background(), PipelineUploadOptions{
			FilePath:  clip,
			ObjectKey: "fixtures/clip.wav",
		})
		require.NoError(t, err)
	})

	assert.Equal(t, "http://minio.minio.svc.cluster.local:9000", gotEndpoint)
	assert.Equal(t, "smoke-access", gotAccessKey)
	assert.Equal(t, "audio-inbox", gotBucket)
	assert.Equal(t, "fixtures/clip.wav", gotKey)
	assert.Contains(t, output, "Uploaded")
	assert.Contains(t, output, "abc123")
}

func TestPipelineUpload_EnsureBucket(t *testing.T) {
	saveAndRestorePipelineFactories(t)
	t.Setenv("FINSIGHT_CONFIG", "")
	t.Setenv("MINIO_ACCESS_KEY", "smoke-access")
	t.Setenv("MINIO_SECRET_KEY", "smoke-secret")
	clip := writeSampleClip(t)

	var createdBucket string
	newInboxClient = func(_, _, _, _ string, _ bool) (inboxClient, error) {
		return &fakeInboxClient{
			createBucketFunc: func(_ context.Context, bucket string) error {
				createdBucket = bucket
				return nil
			},
			uploadFunc: func(_ context.Context, _, key, _ string) (*s3.UploadResult, error) {
				return &s3.UploadResult{Key: key}, nil
			},
		}, nil
	}

	_ = captureOutput(func() {
		err := PipelineUpload(context.Background(), PipelineUploadOptions{
			FilePath:     clip,
			Bucket:       "fresh-inbox",
			EnsureBucket: true,
		})
		require.NoError(t, err)
	})

	assert.Equal(t, "fresh-inbox", createdBucket)
}

func TestPipelineUpload_BucketMissing(t *testing.T) {
	saveAndRestorePipelineFactories(t)
	t.Setenv("FINSIGHT_CONFIG", "")
	t.Setenv("MINIO_ACCESS_KEY", "smoke-access")
	t.Setenv("MINIO_SECRET_KEY", "smoke-secret")
	clip := writeSampleClip(t)

	newInboxClient = func(_, _, _, _ string, _ bool) (inboxClient, error) {
		return &fakeInboxClient{
			bucketExistsFunc: func(_ context.Context, _ string) (bool, error) {
				return false, nil
			},
		}, nil
	}

	err := PipelineUpload(context.Background(), PipelineUploadOptions{FilePath: clip})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ensure-bucket")
}

func TestPipelineUpload_UploadError(t *testing.T) {
	saveAndRestorePipelineFactories(t)
	t.Setenv("FINSIGHT_CONFIG", "")
	t.Setenv("MINIO_ACCESS_KEY", "smoke-access")
	t.Setenv("MINIO_SECRET_KEY", "smoke-secret")
	clip := writeSampleClip(t)

	newInboxClient = func(_, _, _, _ string, _ bool) (inboxClient, error) {
		return &fakeInboxClient{
			bucketExistsFunc: func(_ context.Context, _ string) (bool, error) {
				return true, nil
			},
			uploadFunc: func(_ context.Context, _, _, _ string) (*s3.UploadResult, error) {
				return nil, errors.New("connection reset")
			},
		}, nil
	}

	err := PipelineUpload(context.Background(), PipelineUploadOptions{FilePath: clip})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPipelineApply_DryRun(t *testing.T) {
	t.Setenv("FINSIGHT_CONFIG", "")

	output := captureOutput(func() {
		err := PipelineApply(context.Background(), PipelineApplyOptions{DryRun: true})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "kind: Broker")
	assert.Contains(t, output, "kind: KafkaSource")
	assert.Contains(t, output, "kind: Trigger")
	assert.Contains(t, output, "audio-events")
	assert.Contains(t, output, "audio-event-handler")
	assert.Contains(t, output, "---")
}

func TestPipelineApply_ConnectionError(t *testing.T) {
	saveAndRestorePipelineFactories(t)
	t.Setenv("FINSIGHT_CONFIG", "")

	newKubeClient = func(_ string) (*kube.Client, error) {
		return nil, errors.New("no kubeconfig")
	}

	err := PipelineApply(context.Background(), PipelineApplyOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to cluster")
}
