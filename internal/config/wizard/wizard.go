package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Cluster Identity
	ClusterName string

	// Operator selection
	OperatorPreset string // key into OperatorPresets
	Channel        string
	MinVersion     string

	// Privileges
	GrantClusterAdmin bool
	NamespaceRole     string
	TargetNamespaces  []string

	// Audio pipeline inbox
	MinIOEndpoint string
	MinIOBucket   string

	// Advanced options (only set in advanced mode)
	AdvancedOptions *AdvancedOptions
}

// AdvancedOptions holds advanced configuration options.
type AdvancedOptions struct {
	// Catalog
	CatalogSource    string
	CatalogNamespace string

	// Identity
	Candidates          []string
	AllowMissingPrimary bool

	// Eventing
	Broker           string
	KafkaTopic       string
	BootstrapServers string
	HandlerService   string

	// Metrics
	PushgatewayURL string
}

// RunWizard runs the interactive configuration wizard.
// If advanced is true, additional configuration options are shown.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, advanced bool) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runClusterIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("cluster identity: %w", err)
	}

	// Operator selection (narrows down channels and identities)
	if err := runOperatorGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("operator: %w", err)
	}

	if err := runGrantsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("grants: %w", err)
	}

	if err := runPipelineGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if advanced {
		advOpts := &AdvancedOptions{}

		if err := runCatalogGroup(ctx, result, advOpts); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}

		if err := runIdentityGroup(ctx, result, advOpts); err != nil {
			return nil, fmt.Errorf("identity: %w", err)
		}

		if err := runEventingGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("eventing: %w", err)
		}

		if err := runMetricsGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}

		result.AdvancedOptions = advOpts
	}

	return result, nil
}
