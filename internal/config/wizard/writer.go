package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/finsight-ai/finsightctl/internal/config"
	"gopkg.in/yaml.v3"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is false, only essential non-default values are written.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	var yamlBytes []byte
	var err error

	if fullOutput {
		yamlBytes, err = yaml.Marshal(cfg)
	} else {
		// Create minimal config with only essential fields
		minCfg := buildMinimalConfig(cfg)
		yamlBytes, err = yaml.Marshal(minCfg)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath, fullOutput))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// MinimalConfig represents the minimal configuration for YAML output.
// Only contains fields that are essential or explicitly set by the user.
type MinimalConfig struct {
	ClusterName string                 `yaml:"cluster_name,omitempty"`
	Operator    MinimalOperatorConfig  `yaml:"operator"`
	Identity    *MinimalIdentityConfig `yaml:"identity,omitempty"`
	Grants      *MinimalGrantsConfig   `yaml:"grants,omitempty"`
	Pipeline    *MinimalPipelineConfig `yaml:"pipeline,omitempty"`
	Metrics     *MinimalMetricsConfig  `yaml:"metrics,omitempty"`
}

// MinimalOperatorConfig contains essential subscription settings.
type MinimalOperatorConfig struct {
	Namespace           string `yaml:"namespace,omitempty"`
	CatalogSource       string `yaml:"catalog_source,omitempty"`
	CatalogNamespace    string `yaml:"catalog_namespace,omitempty"`
	Package             string `yaml:"package"`
	Channel             string `yaml:"channel"`
	ControllerNamespace string `yaml:"controller_namespace,omitempty"`
	MinVersion          string `yaml:"min_version,omitempty"`
}

// MinimalIdentityConfig contains identity settings when customized.
type MinimalIdentityConfig struct {
	Candidates          []string `yaml:"candidates,omitempty"`
	AllowMissingPrimary bool     `yaml:"allow_missing_primary,omitempty"`
}

// MinimalGrantsConfig contains grant settings when customized. The role
// fields stay explicit so that an empty role survives a reload as
// disabled instead of falling back to the default.
type MinimalGrantsConfig struct {
	ClusterRole            string   `yaml:"cluster_role"`
	NamespaceRole          string   `yaml:"namespace_role"`
	TargetNamespaces       []string `yaml:"target_namespaces,omitempty"`
	CreateTargetNamespaces bool     `yaml:"create_target_namespaces,omitempty"`
}

// MinimalPipelineConfig contains pipeline settings when customized.
type MinimalPipelineConfig struct {
	Namespace        string              `yaml:"namespace,omitempty"`
	Broker           string              `yaml:"broker,omitempty"`
	KafkaTopic       string              `yaml:"kafka_topic,omitempty"`
	BootstrapServers string              `yaml:"bootstrap_servers,omitempty"`
	HandlerService   string              `yaml:"handler_service,omitempty"`
	MinIO            *MinimalMinIOConfig `yaml:"minio,omitempty"`
}

// MinimalMinIOConfig contains inbox settings when customized.
type MinimalMinIOConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"`
	Region   string `yaml:"region,omitempty"`
}

// MinimalMetricsConfig contains metrics settings when enabled.
type MinimalMetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// buildMinimalConfig creates a minimal config from the full config.
func buildMinimalConfig(cfg *config.Config) *MinimalConfig {
	defaults := config.Default()

	minCfg := &MinimalConfig{
		ClusterName: cfg.ClusterName,
		Operator: MinimalOperatorConfig{
			Package:    cfg.Operator.Package,
			Channel:    cfg.Operator.Channel,
			MinVersion: cfg.Operator.MinVersion,
		},
	}

	// Subscription coordinates - only when they differ from the stock
	// OpenShift GitOps install
	if cfg.Operator.Namespace != defaults.Operator.Namespace {
		minCfg.Operator.Namespace = cfg.Operator.Namespace
	}
	if cfg.Operator.CatalogSource != defaults.Operator.CatalogSource {
		minCfg.Operator.CatalogSource = cfg.Operator.CatalogSource
	}
	if cfg.Operator.CatalogNamespace != defaults.Operator.CatalogNamespace {
		minCfg.Operator.CatalogNamespace = cfg.Operator.CatalogNamespace
	}
	if cfg.Operator.ControllerNamespace != defaults.Operator.ControllerNamespace {
		minCfg.Operator.ControllerNamespace = cfg.Operator.ControllerNamespace
	}

	// Identity - only when customized
	if !sameStrings(cfg.Identity.Candidates, defaults.Identity.Candidates) || cfg.Identity.AllowMissingPrimary {
		minCfg.Identity = &MinimalIdentityConfig{
			Candidates:          cfg.Identity.Candidates,
			AllowMissingPrimary: cfg.Identity.AllowMissingPrimary,
		}
	}

	// Grants - only when customized
	if cfg.Grants.ClusterRole != defaults.Grants.ClusterRole ||
		cfg.Grants.NamespaceRole != defaults.Grants.NamespaceRole ||
		len(cfg.Grants.TargetNamespaces) > 0 ||
		cfg.Grants.CreateTargetNamespaces {
		minCfg.Grants = &MinimalGrantsConfig{
			ClusterRole:            cfg.Grants.ClusterRole,
			NamespaceRole:          cfg.Grants.NamespaceRole,
			TargetNamespaces:       cfg.Grants.TargetNamespaces,
			CreateTargetNamespaces: cfg.Grants.CreateTargetNamespaces,
		}
	}

	// Pipeline - only when customized
	pipeline := &MinimalPipelineConfig{}
	hasPipeline := false

	if cfg.Pipeline.Namespace != defaults.Pipeline.Namespace {
		pipeline.Namespace = cfg.Pipeline.Namespace
		hasPipeline = true
	}
	if cfg.Pipeline.Broker != defaults.Pipeline.Broker {
		pipeline.Broker = cfg.Pipeline.Broker
		hasPipeline = true
	}
	if cfg.Pipeline.KafkaTopic != defaults.Pipeline.KafkaTopic {
		pipeline.KafkaTopic = cfg.Pipeline.KafkaTopic
		hasPipeline = true
	}
	if cfg.Pipeline.BootstrapServers != defaults.Pipeline.BootstrapServers {
		pipeline.BootstrapServers = cfg.Pipeline.BootstrapServers
		hasPipeline = true
	}
	if cfg.Pipeline.HandlerService != defaults.Pipeline.HandlerService {
		pipeline.HandlerService = cfg.Pipeline.HandlerService
		hasPipeline = true
	}

	minio := &MinimalMinIOConfig{}
	hasMinIO := false

	if cfg.Pipeline.MinIO.Endpoint != defaults.Pipeline.MinIO.Endpoint {
		minio.Endpoint = cfg.Pipeline.MinIO.Endpoint
		hasMinIO = true
	}
	if cfg.Pipeline.MinIO.Bucket != defaults.Pipeline.MinIO.Bucket {
		minio.Bucket = cfg.Pipeline.MinIO.Bucket
		hasMinIO = true
	}
	if cfg.Pipeline.MinIO.Region != defaults.Pipeline.MinIO.Region {
		minio.Region = cfg.Pipeline.MinIO.Region
		hasMinIO = true
	}

	if hasMinIO {
		pipeline.MinIO = minio
		hasPipeline = true
	}
	if hasPipeline {
		minCfg.Pipeline = pipeline
	}

	// Metrics - only when enabled
	if cfg.Metrics.PushgatewayURL != "" {
		minCfg.Metrics = &MinimalMetricsConfig{
			PushgatewayURL: cfg.Metrics.PushgatewayURL,
		}
	}

	return minCfg
}

// sameStrings reports whether two string slices hold the same values in order.
func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, fullOutput bool) string {
	mode := "minimal"
	note := "\n# Note: This is a minimal config. Use --full flag for all options."
	if fullOutput {
		mode = "full"
		note = ""
	}
	return fmt.Sprintf(`# finsightctl cluster configuration
# Generated by: finsightctl init
# Generated at: %s
# Output mode: %s
# Docs: https://github.com/finsight-ai/finsightctl%s
#
# Required environment variables:
#   KUBECONFIG - kubeconfig with cluster-admin access
#   MINIO_ACCESS_KEY / MINIO_SECRET_KEY - inbox credentials for uploads
#
# Usage:
#   finsightctl bootstrap -c %s
`, time.Now().Format(time.RFC3339), mode, note, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
