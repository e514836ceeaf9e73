package wizard

import "github.com/finsight-ai/finsightctl/internal/config"

// BuildConfig creates a Config struct from the wizard result. Answers the
// wizard never asked about keep their stock defaults.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := config.Default()
	cfg.ClusterName = result.ClusterName

	if preset, ok := PresetByKey(result.OperatorPreset); ok {
		cfg.Operator.Package = preset.Package
		cfg.Operator.CatalogSource = preset.CatalogSource
		cfg.Operator.CatalogNamespace = preset.CatalogNamespace
		cfg.Operator.ControllerNamespace = preset.ControllerNamespace
		if len(preset.Channels) > 0 {
			cfg.Operator.Channel = preset.Channels[0]
		}
		cfg.Identity.Candidates = append([]string(nil), preset.Candidates...)
	}
	if result.Channel != "" {
		cfg.Operator.Channel = result.Channel
	}
	cfg.Operator.MinVersion = result.MinVersion

	if !result.GrantClusterAdmin {
		cfg.Grants.ClusterRole = ""
	}
	if result.NamespaceRole != "" {
		cfg.Grants.NamespaceRole = result.NamespaceRole
	}
	if len(result.TargetNamespaces) > 0 {
		cfg.Grants.TargetNamespaces = result.TargetNamespaces
		cfg.Grants.CreateTargetNamespaces = true
	}

	if result.MinIOEndpoint != "" {
		cfg.Pipeline.MinIO.Endpoint = result.MinIOEndpoint
	}
	if result.MinIOBucket != "" {
		cfg.Pipeline.MinIO.Bucket = result.MinIOBucket
	}

	if result.AdvancedOptions != nil {
		applyAdvancedOptions(cfg, result.AdvancedOptions)
	}

	return cfg
}

// applyAdvancedOptions applies advanced options to the config.
func applyAdvancedOptions(cfg *config.Config, opts *AdvancedOptions) {
	if opts.CatalogSource != "" {
		cfg.Operator.CatalogSource = opts.CatalogSource
	}
	if opts.CatalogNamespace != "" {
		cfg.Operator.CatalogNamespace = opts.CatalogNamespace
	}

	if len(opts.Candidates) > 0 {
		cfg.Identity.Candidates = opts.Candidates
	}
	cfg.Identity.AllowMissingPrimary = opts.AllowMissingPrimary

	if opts.Broker != "" {
		cfg.Pipeline.Broker = opts.Broker
	}
	if opts.KafkaTopic != "" {
		cfg.Pipeline.KafkaTopic = opts.KafkaTopic
	}
	if opts.BootstrapServers != "" {
		cfg.Pipeline.BootstrapServers = opts.BootstrapServers
	}
	if opts.HandlerService != "" {
		cfg.Pipeline.HandlerService = opts.HandlerService
	}

	cfg.Metrics.PushgatewayURL = opts.PushgatewayURL
}
