package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeConfigFile writes content to a temporary YAML file and returns its path.
func writeConfigFile(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), pattern)
	assert.NoError(t, err)

	_, err = tmpfile.Write([]byte(content))
	assert.NoError(t, err)
	_ = tmpfile.Close()
	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openshift-operators", cfg.Operator.Namespace)
	assert.Equal(t, "global-operators", cfg.Operator.OperatorGroup)
	assert.Equal(t, "redhat-operators", cfg.Operator.CatalogSource)
	assert.Equal(t, "openshift-marketplace", cfg.Operator.CatalogNamespace)
	assert.Equal(t, "openshift-gitops-operator", cfg.Operator.Package)
	assert.Equal(t, "latest", cfg.Operator.Channel)
	assert.Equal(t, "openshift-gitops", cfg.Operator.ControllerNamespace)
	assert.Empty(t, cfg.Operator.MinVersion)

	// The primary identity comes first, the legacy name after it.
	assert.Equal(t, []string{
		"openshift-gitops-argocd-application-controller",
		"argocd-cluster-argocd-application-controller",
	}, cfg.Identity.Candidates)

	assert.Equal(t, "cluster-admin", cfg.Grants.ClusterRole)
	assert.Equal(t, "admin", cfg.Grants.NamespaceRole)
	assert.Empty(t, cfg.Grants.TargetNamespaces)

	assert.Equal(t, "finsight-agent", cfg.Pipeline.Namespace)
	assert.Equal(t, "audio-events", cfg.Pipeline.Broker)
	assert.Equal(t, "audio-inbox-events", cfg.Pipeline.KafkaTopic)
	assert.Equal(t, "kafka-cluster-kafka-bootstrap.kafka.svc:9092", cfg.Pipeline.BootstrapServers)
	assert.Equal(t, "audio-event-handler", cfg.Pipeline.HandlerService)
	assert.Equal(t, "http://minio.minio.svc.cluster.local:9000", cfg.Pipeline.MinIO.Endpoint)
	assert.Equal(t, "audio-inbox", cfg.Pipeline.MinIO.Bucket)
	assert.Equal(t, "us-east-1", cfg.Pipeline.MinIO.Region)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	content := `
cluster_name: "crc"
operator:
  namespace: "operators"
  operator_group: "operators-group"
  catalog_source: "community-operators"
  catalog_namespace: "marketplace"
  package: "argocd-operator"
  channel: "alpha"
  controller_namespace: "argocd"
  min_version: "0.8.0"
identity:
  candidates:
    - "argocd-argocd-application-controller"
  allow_missing_primary: true
grants:
  cluster_role: "cluster-admin"
  namespace_role: "edit"
  target_namespaces:
    - "finsight-agent"
    - "finsight-stage"
  create_target_namespaces: true
pipeline:
  namespace: "agent"
  minio:
    endpoint: "https://minio-api.apps.crc.testing"
metrics:
  pushgateway_url: "http://pushgateway:9091"
`
	cfg, err := LoadFile(writeConfigFile(t, "config-*.yaml", content))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "crc", cfg.ClusterName)
	assert.Equal(t, "operators", cfg.Operator.Namespace)
	assert.Equal(t, "operators-group", cfg.Operator.OperatorGroup)
	assert.Equal(t, "community-operators", cfg.Operator.CatalogSource)
	assert.Equal(t, "marketplace", cfg.Operator.CatalogNamespace)
	assert.Equal(t, "argocd-operator", cfg.Operator.Package)
	assert.Equal(t, "alpha", cfg.Operator.Channel)
	assert.Equal(t, "argocd", cfg.Operator.ControllerNamespace)
	assert.Equal(t, "0.8.0", cfg.Operator.MinVersion)

	// A candidates list in the file replaces the default list wholesale.
	assert.Equal(t, []string{"argocd-argocd-application-controller"}, cfg.Identity.Candidates)
	assert.True(t, cfg.Identity.AllowMissingPrimary)

	assert.Equal(t, "edit", cfg.Grants.NamespaceRole)
	assert.Equal(t, []string{"finsight-agent", "finsight-stage"}, cfg.Grants.TargetNamespaces)
	assert.True(t, cfg.Grants.CreateTargetNamespaces)

	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfigFile(t, "config-minimal-*.yaml", `cluster_name: "crc"`))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Everything but the cluster name comes from Default.
	assert.Equal(t, "crc", cfg.ClusterName)
	assert.Equal(t, "openshift-gitops-operator", cfg.Operator.Package)
	assert.Equal(t, "latest", cfg.Operator.Channel)
	assert.Len(t, cfg.Identity.Candidates, 2)
	assert.Equal(t, "cluster-admin", cfg.Grants.ClusterRole)
	assert.Equal(t, "admin", cfg.Grants.NamespaceRole)
	assert.Equal(t, "audio-inbox", cfg.Pipeline.MinIO.Bucket)
}

func TestLoadFile_PartialSections(t *testing.T) {
	content := `
operator:
  package: "argocd-operator"
  channel: "alpha"
  controller_namespace: "argocd"
pipeline:
  minio:
    endpoint: "https://minio-api.apps.crc.testing"
`
	cfg, err := LoadFile(writeConfigFile(t, "config-partial-*.yaml", content))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Set fields are taken from the file, the rest of the section from
	// the defaults.
	assert.Equal(t, "argocd-operator", cfg.Operator.Package)
	assert.Equal(t, "openshift-operators", cfg.Operator.Namespace)
	assert.Equal(t, "redhat-operators", cfg.Operator.CatalogSource)
	assert.Equal(t, "https://minio-api.apps.crc.testing", cfg.Pipeline.MinIO.Endpoint)
	assert.Equal(t, "audio-inbox", cfg.Pipeline.MinIO.Bucket)
	assert.Equal(t, "audio-events", cfg.Pipeline.Broker)
}

func TestLoadFile_GrantsTargetsOnly(t *testing.T) {
	content := `
grants:
  target_namespaces:
    - "finsight-agent"
`
	cfg, err := LoadFile(writeConfigFile(t, "config-targets-*.yaml", content))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Roles the file never mentions keep their defaults.
	assert.Equal(t, "cluster-admin", cfg.Grants.ClusterRole)
	assert.Equal(t, "admin", cfg.Grants.NamespaceRole)
	assert.Equal(t, []string{"finsight-agent"}, cfg.Grants.TargetNamespaces)
}

func TestLoadFile_ExplicitEmptyClusterRole(t *testing.T) {
	content := `
grants:
  cluster_role: ""
  namespace_role: "admin"
  target_namespaces:
    - "finsight-agent"
`
	cfg, err := LoadFile(writeConfigFile(t, "config-nocluster-*.yaml", content))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// An explicitly empty cluster_role disables the cluster-wide grant
	// rather than falling back to the default.
	assert.Empty(t, cfg.Grants.ClusterRole)
	assert.Equal(t, "admin", cfg.Grants.NamespaceRole)
}

func TestLoadFile_NonExistentFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	_, err := LoadFile(writeConfigFile(t, "config-invalid-*.yaml", `invalid: yaml: content: [`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadFile_ValidationError(t *testing.T) {
	content := `
identity:
  candidates: []
`
	_, err := LoadFile(writeConfigFile(t, "config-nocandidates-*.yaml", content))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "identity.candidates")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing operator namespace",
			mutate:  func(c *Config) { c.Operator.Namespace = "" },
			wantErr: "operator.namespace is required",
		},
		{
			name:    "missing operator group",
			mutate:  func(c *Config) { c.Operator.OperatorGroup = "" },
			wantErr: "operator.operator_group is required",
		},
		{
			name:    "missing package",
			mutate:  func(c *Config) { c.Operator.Package = "" },
			wantErr: "operator.package is required",
		},
		{
			name:    "missing channel",
			mutate:  func(c *Config) { c.Operator.Channel = "" },
			wantErr: "operator.channel is required",
		},
		{
			name:    "missing catalog source",
			mutate:  func(c *Config) { c.Operator.CatalogSource = "" },
			wantErr: "operator.catalog_source and operator.catalog_namespace are required",
		},
		{
			name:    "missing controller namespace",
			mutate:  func(c *Config) { c.Operator.ControllerNamespace = "" },
			wantErr: "operator.controller_namespace is required",
		},
		{
			name:    "no identity candidates",
			mutate:  func(c *Config) { c.Identity.Candidates = nil },
			wantErr: "identity.candidates must list at least the primary service account",
		},
		{
			name:    "empty candidate name",
			mutate:  func(c *Config) { c.Identity.Candidates = []string{"primary", ""} },
			wantErr: "identity.candidates must not contain empty names",
		},
		{
			name: "no roles at all",
			mutate: func(c *Config) {
				c.Grants.ClusterRole = ""
				c.Grants.NamespaceRole = ""
			},
			wantErr: "grants must name a cluster_role or a namespace_role",
		},
		{
			name: "namespace role without targets",
			mutate: func(c *Config) {
				c.Grants.ClusterRole = ""
				c.Grants.TargetNamespaces = nil
			},
			wantErr: "grants.target_namespaces is required when only namespace_role is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
