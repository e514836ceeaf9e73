package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config holds the finsightctl configuration. It is loaded once at startup
// and treated as immutable for the rest of the run.
type Config struct {
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`

	// Operator installation (subscription, operator group, controller).
	Operator OperatorConfig `mapstructure:"operator" yaml:"operator"`

	// Reconciliation identity resolution.
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`

	// Privileges granted to the resolved identities.
	Grants GrantsConfig `mapstructure:"grants" yaml:"grants"`

	// Eventing pipeline wiring and the MinIO inbox.
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	// Optional metrics emission.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// OperatorConfig identifies the operator to install and where its controller
// materializes.
type OperatorConfig struct {
	Namespace        string `mapstructure:"namespace" yaml:"namespace"`
	OperatorGroup    string `mapstructure:"operator_group" yaml:"operator_group"`
	CatalogSource    string `mapstructure:"catalog_source" yaml:"catalog_source"`
	CatalogNamespace string `mapstructure:"catalog_namespace" yaml:"catalog_namespace"`
	Package          string `mapstructure:"package" yaml:"package"`
	Channel          string `mapstructure:"channel" yaml:"channel"`

	// ControllerNamespace is where the operator materializes its workloads
	// and service accounts, distinct from the subscription namespace.
	ControllerNamespace string `mapstructure:"controller_namespace" yaml:"controller_namespace"`

	// MinVersion optionally gates the installed CSV version (semver).
	MinVersion string `mapstructure:"min_version" yaml:"min_version,omitempty"`
}

// IdentityConfig lists the service-account names the controller may run as,
// primary first. Operator upgrades have renamed the account before, so the
// tail entries cover legacy installations.
type IdentityConfig struct {
	Candidates []string `mapstructure:"candidates" yaml:"candidates"`

	// AllowMissingPrimary downgrades an absent primary identity from a fatal
	// error to a warning. Only sensible on clusters mid-migration.
	AllowMissingPrimary bool `mapstructure:"allow_missing_primary" yaml:"allow_missing_primary,omitempty"`
}

// GrantsConfig names the roles bound to every resolved identity.
type GrantsConfig struct {
	ClusterRole      string   `mapstructure:"cluster_role" yaml:"cluster_role"`
	NamespaceRole    string   `mapstructure:"namespace_role" yaml:"namespace_role"`
	TargetNamespaces []string `mapstructure:"target_namespaces" yaml:"target_namespaces,omitempty"`

	// CreateTargetNamespaces makes bootstrap create missing target
	// namespaces instead of failing the namespace-scoped grant.
	CreateTargetNamespaces bool `mapstructure:"create_target_namespaces" yaml:"create_target_namespaces,omitempty"`
}

// PipelineConfig wires the object-storage inbox to the eventing chain.
type PipelineConfig struct {
	Namespace        string      `mapstructure:"namespace" yaml:"namespace"`
	Broker           string      `mapstructure:"broker" yaml:"broker"`
	KafkaTopic       string      `mapstructure:"kafka_topic" yaml:"kafka_topic"`
	BootstrapServers string      `mapstructure:"bootstrap_servers" yaml:"bootstrap_servers"`
	HandlerService   string      `mapstructure:"handler_service" yaml:"handler_service"`
	MinIO            MinIOConfig `mapstructure:"minio" yaml:"minio"`
}

// MinIOConfig locates the upload inbox. Credentials come from the
// MINIO_ACCESS_KEY / MINIO_SECRET_KEY environment, never from this file.
type MinIOConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Bucket   string `mapstructure:"bucket" yaml:"bucket"`
	Region   string `mapstructure:"region" yaml:"region"`
}

// MetricsConfig enables pushing run metrics when a gateway URL is set.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url,omitempty"`
}

// Default returns the configuration for a stock FinSight cluster: the
// OpenShift GitOps operator installed cluster-wide, the Argo CD application
// controller granted cluster-admin, and the audio pipeline in finsight-agent.
func Default() *Config {
	return &Config{
		Operator: OperatorConfig{
			Namespace:           "openshift-operators",
			OperatorGroup:       "global-operators",
			CatalogSource:       "redhat-operators",
			CatalogNamespace:    "openshift-marketplace",
			Package:             "openshift-gitops-operator",
			Channel:             "latest",
			ControllerNamespace: "openshift-gitops",
		},
		Identity: IdentityConfig{
			Candidates: []string{
				"openshift-gitops-argocd-application-controller",
				"argocd-cluster-argocd-application-controller",
			},
		},
		Grants: GrantsConfig{
			ClusterRole:   "cluster-admin",
			NamespaceRole: "admin",
		},
		Pipeline: PipelineConfig{
			Namespace:        "finsight-agent",
			Broker:           "audio-events",
			KafkaTopic:       "audio-inbox-events",
			BootstrapServers: "kafka-cluster-kafka-bootstrap.kafka.svc:9092",
			HandlerService:   "audio-event-handler",
			MinIO: MinIOConfig{
				Endpoint: "http://minio.minio.svc.cluster.local:9000",
				Bucket:   "audio-inbox",
				Region:   "us-east-1",
			},
		},
	}
}

// LoadFile reads and parses the configuration from a YAML file. Fields the
// file leaves unset fall back to the stock values from Default.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg, rawConfig)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills fields the file left unset. The grant roles are the
// exception to empty-means-unset: a role key written as an empty string
// disables that grant instead of taking the default.
func applyDefaults(cfg *Config, rawConfig map[string]interface{}) {
	defaults := Default()

	if cfg.Operator.Namespace == "" {
		cfg.Operator.Namespace = defaults.Operator.Namespace
	}
	if cfg.Operator.OperatorGroup == "" {
		cfg.Operator.OperatorGroup = defaults.Operator.OperatorGroup
	}
	if cfg.Operator.CatalogSource == "" {
		cfg.Operator.CatalogSource = defaults.Operator.CatalogSource
	}
	if cfg.Operator.CatalogNamespace == "" {
		cfg.Operator.CatalogNamespace = defaults.Operator.CatalogNamespace
	}
	if cfg.Operator.Package == "" {
		cfg.Operator.Package = defaults.Operator.Package
	}
	if cfg.Operator.Channel == "" {
		cfg.Operator.Channel = defaults.Operator.Channel
	}
	if cfg.Operator.ControllerNamespace == "" {
		cfg.Operator.ControllerNamespace = defaults.Operator.ControllerNamespace
	}
	if cfg.Identity.Candidates == nil {
		cfg.Identity.Candidates = defaults.Identity.Candidates
	}
	if cfg.Grants.ClusterRole == "" && !grantRoleSet(rawConfig, "cluster_role") {
		cfg.Grants.ClusterRole = defaults.Grants.ClusterRole
	}
	if cfg.Grants.NamespaceRole == "" && !grantRoleSet(rawConfig, "namespace_role") {
		cfg.Grants.NamespaceRole = defaults.Grants.NamespaceRole
	}
	if cfg.Pipeline.Namespace == "" {
		cfg.Pipeline.Namespace = defaults.Pipeline.Namespace
	}
	if cfg.Pipeline.Broker == "" {
		cfg.Pipeline.Broker = defaults.Pipeline.Broker
	}
	if cfg.Pipeline.KafkaTopic == "" {
		cfg.Pipeline.KafkaTopic = defaults.Pipeline.KafkaTopic
	}
	if cfg.Pipeline.BootstrapServers == "" {
		cfg.Pipeline.BootstrapServers = defaults.Pipeline.BootstrapServers
	}
	if cfg.Pipeline.HandlerService == "" {
		cfg.Pipeline.HandlerService = defaults.Pipeline.HandlerService
	}
	if cfg.Pipeline.MinIO.Endpoint == "" {
		cfg.Pipeline.MinIO.Endpoint = defaults.Pipeline.MinIO.Endpoint
	}
	if cfg.Pipeline.MinIO.Bucket == "" {
		cfg.Pipeline.MinIO.Bucket = defaults.Pipeline.MinIO.Bucket
	}
	if cfg.Pipeline.MinIO.Region == "" {
		cfg.Pipeline.MinIO.Region = defaults.Pipeline.MinIO.Region
	}
}

// grantRoleSet reports whether a grants role key was written in the file,
// distinguishing an explicit empty role from an absent one.
func grantRoleSet(rawConfig map[string]interface{}, key string) bool {
	grantsMap, ok := rawConfig["grants"].(map[string]interface{})
	if !ok {
		return false
	}
	_, set := grantsMap[key]
	return set
}

// Validate checks the fields the bootstrap flow cannot default.
func (c *Config) Validate() error {
	if c.Operator.Namespace == "" {
		return fmt.Errorf("operator.namespace is required")
	}
	if c.Operator.OperatorGroup == "" {
		return fmt.Errorf("operator.operator_group is required")
	}
	if c.Operator.Package == "" {
		return fmt.Errorf("operator.package is required")
	}
	if c.Operator.Channel == "" {
		return fmt.Errorf("operator.channel is required")
	}
	if c.Operator.CatalogSource == "" || c.Operator.CatalogNamespace == "" {
		return fmt.Errorf("operator.catalog_source and operator.catalog_namespace are required")
	}
	if c.Operator.ControllerNamespace == "" {
		return fmt.Errorf("operator.controller_namespace is required")
	}
	if len(c.Identity.Candidates) == 0 {
		return fmt.Errorf("identity.candidates must list at least the primary service account")
	}
	for _, candidate := range c.Identity.Candidates {
		if candidate == "" {
			return fmt.Errorf("identity.candidates must not contain empty names")
		}
	}
	if c.Grants.ClusterRole == "" && c.Grants.NamespaceRole == "" {
		return fmt.Errorf("grants must name a cluster_role or a namespace_role")
	}
	if c.Grants.NamespaceRole != "" && c.Grants.ClusterRole == "" && len(c.Grants.TargetNamespaces) == 0 {
		return fmt.Errorf("grants.target_namespaces is required when only namespace_role is set")
	}
	return nil
}
