package commands

import (
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/handlers"
)

// Pipeline returns the parent command for the audio pipeline operations.
func Pipeline() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Manage the audio ingestion pipeline wiring",
	}

	cmd.AddCommand(PipelineApply())
	cmd.AddCommand(PipelineUpload())

	return cmd
}

// PipelineApply returns the command for applying the eventing chain.
//
// This command server-side-applies the Knative Broker, Kafka source, and
// trigger that route object-storage notifications from the audio inbox to
// the event handler service. It only writes configuration; message delivery
// stays with the eventing layer.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: finsight.yaml)
//	--kubeconfig: Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)
//	--dry-run: Print the chain as YAML without applying anything
func PipelineApply() *cobra.Command {
	var (
		configPath string
		kubeconfig string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the inbox-to-handler eventing chain",
		Long: `Apply the eventing chain that routes audio inbox events to the handler.

The chain consists of a Kafka-backed Knative broker, a Kafka source feeding
the object-storage notification topic into it, and a trigger delivering the
events to the handler service. All objects are applied with server-side apply,
so reruns converge and fields owned by other controllers are left alone.

Examples:
  # Apply the chain from finsight.yaml
  finsightctl pipeline apply

  # Print the chain without touching the cluster
  finsightctl pipeline apply --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.PipelineApplyOptions{
				ConfigPath: configPath,
				Kubeconfig: kubeconfig,
				DryRun:     dryRun,
			}
			return handlers.PipelineApply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: finsight.yaml)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the chain as YAML without applying")

	return cmd
}

// PipelineUpload returns the command for the inbox upload smoke test.
//
// This command uploads a local file to the MinIO audio inbox and confirms
// the stored object, exercising the same path the recorder uses. The
// notification that results should appear at the handler if the chain is
// wired correctly.
//
// Required arguments:
//
//	FILE: Path to the local file to upload
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: finsight.yaml)
//	--endpoint: MinIO endpoint override
//	--bucket: Bucket override
//	--object-key: Exact object key to upload under (default: random UUID name)
//	--prefix: Key prefix when generating a random object key
//	--ensure-bucket: Create the bucket if it does not exist
//	--no-verify: Skip TLS certificate verification
//	--dry-run: Print the upload plan without connecting
//
// Environment variables:
//
//	MINIO_ACCESS_KEY: Inbox access key (required)
//	MINIO_SECRET_KEY: Inbox secret key (required)
func PipelineUpload() *cobra.Command {
	var (
		configPath   string
		endpoint     string
		bucket       string
		objectKey    string
		prefix       string
		ensureBucket bool
		noVerify     bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to the audio inbox",
		Long: `Upload a file to the MinIO audio inbox as an end-to-end smoke test.

The file is streamed to the bucket under a random UUID-based key (or the
key given with --object-key) and the stored object is confirmed with a
follow-up read. If the eventing chain is applied, the upload produces a
bucket notification that the handler service receives.

Credentials come from the MINIO_ACCESS_KEY and MINIO_SECRET_KEY
environment variables; they are never read from the config file.

Examples:
  # Upload a sample recording
  finsightctl pipeline upload sample.wav

  # Upload under an explicit key, creating the bucket if needed
  finsightctl pipeline upload sample.wav --object-key smoke/sample.wav --ensure-bucket

  # Show what would be uploaded
  finsightctl pipeline upload sample.wav --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.PipelineUploadOptions{
				ConfigPath:   configPath,
				FilePath:     args[0],
				Endpoint:     endpoint,
				Bucket:       bucket,
				ObjectKey:    objectKey,
				Prefix:       prefix,
				EnsureBucket: ensureBucket,
				NoVerify:     noVerify,
				DryRun:       dryRun,
			}
			return handlers.PipelineUpload(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: finsight.yaml)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "MinIO endpoint (default: from config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name (default: from config)")
	cmd.Flags().StringVar(&objectKey, "object-key", "", "Exact object key (default: random UUID name)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix for generated object keys")
	cmd.Flags().BoolVar(&ensureBucket, "ensure-bucket", false, "Create the bucket if it does not exist")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the upload plan without connecting")

	return cmd
}
