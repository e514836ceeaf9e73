package commands

import (
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/handlers"
)

// Status returns the command for showing the bootstrap convergence state.
//
// This command reads the subscription, CSV, controller namespace, pods, and
// identities without creating or changing anything, and renders a one-shot
// report.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: finsight.yaml)
//	--kubeconfig: Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)
//	--json: Output status as JSON instead of styled text
func Status() *cobra.Command {
	var (
		configPath string
		kubeconfig string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the GitOps bootstrap convergence state",
		Long: `Show how far the GitOps bootstrap has converged.

This command reports the subscription state, the operator CSV phase and
version, the controller namespace and pod readiness, the resolved
reconciliation identities, and a verification summary for whatever
identities exist. It is read-only.

Examples:
  # Show status with styled output
  finsightctl status

  # Machine-readable output for scripts
  finsightctl status --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.StatusOptions{
				ConfigPath: configPath,
				Kubeconfig: kubeconfig,
				JSONOutput: jsonOutput,
			}
			return handlers.Status(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: finsight.yaml)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")

	return cmd
}
