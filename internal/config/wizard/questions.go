package wizard

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/charmbracelet/huh"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// nameRegex validates RFC 1123 labels: namespaces and service account names.
var nameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// bucketRegex validates S3 bucket names: 3-63 lowercase alphanumeric, dots or hyphens.
var bucketRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// runClusterIdentityGroup prompts for the cluster name.
func runClusterIdentityGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("1-32 lowercase alphanumeric characters or hyphens").
				Placeholder("finsight-prod").
				Value(&result.ClusterName).
				Validate(validateClusterName),
		).Title("Cluster Identity"),
	).RunWithContext(ctx)
}

// runOperatorGroup prompts for the operator package, channel and version gate.
func runOperatorGroup(ctx context.Context, result *WizardResult) error {
	result.OperatorPreset = PresetOpenShiftGitOps // default

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("GitOps Operator").
				Description("Operator package to install from the marketplace").
				Options(OperatorsToOptions()...).
				Value(&result.OperatorPreset),
		).Title("Operator"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	preset, ok := PresetByKey(result.OperatorPreset)
	if !ok {
		preset = OperatorPresets[0]
	}
	if len(preset.Channels) > 0 {
		result.Channel = preset.Channels[0]
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Update Channel").
				Description("Subscription channel the install plan follows").
				Options(ChannelsToOptions(preset)...).
				Value(&result.Channel),
			huh.NewInput().
				Title("Minimum Version (Optional)").
				Description("Smallest acceptable operator version. Leave empty to accept any.").
				Placeholder("1.8.0 (or leave empty)").
				Value(&result.MinVersion).
				Validate(validateMinVersion),
		).Title("Operator Channel"),
	).RunWithContext(ctx)
}

// runGrantsGroup prompts for the privileges granted to the controller.
func runGrantsGroup(ctx context.Context, result *WizardResult) error {
	var namespacesInput string

	result.GrantClusterAdmin = true
	result.NamespaceRole = "admin"

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Grant cluster-admin?").
				Description("Bind cluster-admin to the application controller for cluster-wide reconciliation").
				Value(&result.GrantClusterAdmin),
			huh.NewSelect[string]().
				Title("Namespace Role").
				Description("Role bound to the controller in each target namespace").
				Options(NamespaceRoleOptions...).
				Value(&result.NamespaceRole),
			huh.NewInput().
				Title("Target Namespaces (Optional)").
				Description("Comma-separated namespaces that receive the namespace role").
				Placeholder("finsight-agent (or leave empty)").
				Value(&namespacesInput).
				Validate(validateNamespaceList),
		).Title("Privileges"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	result.TargetNamespaces = parseList(namespacesInput)
	return nil
}

// runPipelineGroup prompts for the audio inbox location.
func runPipelineGroup(ctx context.Context, result *WizardResult) error {
	result.MinIOEndpoint = "http://minio.minio.svc.cluster.local:9000"
	result.MinIOBucket = "audio-inbox"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("MinIO Endpoint").
				Description("S3 API endpoint of the audio inbox").
				Value(&result.MinIOEndpoint).
				Validate(validateEndpoint),
			huh.NewInput().
				Title("Inbox Bucket").
				Description("Bucket that receives audio uploads").
				Value(&result.MinIOBucket).
				Validate(validateBucket),
		).Title("Audio Pipeline"),
	).RunWithContext(ctx)
}

// runCatalogGroup prompts for catalog overrides (advanced mode).
func runCatalogGroup(ctx context.Context, result *WizardResult, opts *AdvancedOptions) error {
	preset, ok := PresetByKey(result.OperatorPreset)
	if !ok {
		preset = OperatorPresets[0]
	}
	opts.CatalogSource = preset.CatalogSource
	opts.CatalogNamespace = preset.CatalogNamespace

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Catalog Source").
				Description("CatalogSource the subscription pulls from").
				Value(&opts.CatalogSource),
			huh.NewInput().
				Title("Catalog Namespace").
				Description("Namespace the catalog source lives in").
				Value(&opts.CatalogNamespace),
		).Title("Catalog"),
	).RunWithContext(ctx)
}

// runIdentityGroup prompts for identity overrides (advanced mode).
func runIdentityGroup(ctx context.Context, result *WizardResult, opts *AdvancedOptions) error {
	preset, ok := PresetByKey(result.OperatorPreset)
	if !ok {
		preset = OperatorPresets[0]
	}
	candidatesInput := strings.Join(preset.Candidates, ", ")

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Controller Service Accounts").
				Description("Comma-separated candidate names, primary first").
				Value(&candidatesInput).
				Validate(validateCandidateList),
			huh.NewConfirm().
				Title("Tolerate Missing Primary?").
				Description("Continue with a warning when the primary service account never appears").
				Value(&opts.AllowMissingPrimary),
		).Title("Identity"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	opts.Candidates = parseList(candidatesInput)
	return nil
}

// runEventingGroup prompts for eventing chain overrides (advanced mode).
func runEventingGroup(ctx context.Context, opts *AdvancedOptions) error {
	opts.Broker = "audio-events"
	opts.KafkaTopic = "audio-inbox-events"
	opts.BootstrapServers = "kafka-cluster-kafka-bootstrap.kafka.svc:9092"
	opts.HandlerService = "audio-event-handler"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Broker Name").
				Description("Knative broker the inbox events flow through").
				Value(&opts.Broker),
			huh.NewInput().
				Title("Kafka Topic").
				Description("Topic carrying the bucket notifications").
				Value(&opts.KafkaTopic),
			huh.NewInput().
				Title("Bootstrap Servers").
				Description("Kafka bootstrap servers for the source").
				Value(&opts.BootstrapServers),
			huh.NewInput().
				Title("Handler Service").
				Description("Knative service subscribed to the broker").
				Value(&opts.HandlerService),
		).Title("Eventing"),
	).RunWithContext(ctx)
}

// runMetricsGroup prompts for metrics emission (advanced mode).
func runMetricsGroup(ctx context.Context, opts *AdvancedOptions) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pushgateway URL (Optional)").
				Description("Prometheus Pushgateway that receives bootstrap run metrics. Leave empty to disable.").
				Placeholder("http://pushgateway:9091 (or leave empty)").
				Value(&opts.PushgatewayURL).
				Validate(validateOptionalURL),
		).Title("Metrics"),
	).RunWithContext(ctx)
}

// validateClusterName validates the cluster name format.
func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if !clusterNameRegex.MatchString(s) {
		return errClusterNameInvalid
	}
	return nil
}

// validateNamespaceList validates a comma-separated list of namespaces.
// An empty input is valid.
func validateNamespaceList(s string) error {
	for _, ns := range parseList(s) {
		if !nameRegex.MatchString(ns) {
			return errNamespaceInvalid
		}
	}
	return nil
}

// validateCandidateList validates a comma-separated list of service
// account names. An empty input is valid.
func validateCandidateList(s string) error {
	for _, name := range parseList(s) {
		if !nameRegex.MatchString(name) {
			return errCandidateInvalid
		}
	}
	return nil
}

// validateEndpoint validates an http or https endpoint URL.
func validateEndpoint(s string) error {
	if s == "" {
		return errEndpointRequired
	}
	return validateOptionalURL(s)
}

// validateOptionalURL validates an http or https URL, accepting empty input.
func validateOptionalURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return errEndpointInvalid
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errEndpointInvalid
	}
	return nil
}

// validateBucket validates an S3 bucket name.
func validateBucket(s string) error {
	if s == "" {
		return errBucketRequired
	}
	if !bucketRegex.MatchString(s) {
		return errBucketInvalid
	}
	return nil
}

// validateMinVersion validates an optional semantic version gate.
func validateMinVersion(s string) error {
	if s == "" {
		return nil
	}
	if _, err := semver.ParseTolerant(s); err != nil {
		return errVersionInvalid
	}
	return nil
}

// parseList parses a comma-separated list of names.
func parseList(input string) []string {
	parts := strings.Split(input, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
