package commands

import (
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/handlers"
)

// Bootstrap returns the command for bootstrapping the GitOps stack.
//
// This command drives the full bootstrap flow against the target cluster:
//  1. Preflight: checks the caller's own permissions
//  2. Ensures the operator namespace, operator group, and subscription
//  3. Waits for the operator CSV to reach phase Succeeded
//  4. Waits for the controller namespace and its pods
//  5. Resolves the application controller service account
//  6. Grants the configured cluster and namespace roles
//  7. Verifies the grants and prints an advisory report
//
// Every step is idempotent; rerunning after a partial failure resumes by
// observing the cluster.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: finsight.yaml)
//	--kubeconfig: Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)
//	--verbose, -v: Enable debug logging
//
// Environment variables:
//
//	FINSIGHT_* variables override individual config fields
//	FINSIGHT_TIMEOUT_* variables override the wait budgets
func Bootstrap() *cobra.Command {
	var (
		configPath string
		kubeconfig string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Install the GitOps operator and grant its identity",
		Long: `Install the FinSight GitOps operator and grant its identity.

This command installs the OpenShift GitOps operator through OLM, waits for
it to converge, resolves the Argo CD application controller service account,
binds it to the configured roles, and verifies that the grants are effective.

The flow is idempotent: resources that already exist are left alone, the
subscription is re-applied declaratively, and role bindings are only ever
extended. A rerun after a partial failure picks up where the cluster state
left off.

Verification findings are advisory. Mismatches are reported but never fail
the run and nothing is ever revoked.

Examples:
  # Bootstrap using finsight.yaml in the current directory
  finsightctl bootstrap

  # Bootstrap using a specific config file
  finsightctl bootstrap -c production.yaml

  # Re-run after a timeout with a longer install budget
  FINSIGHT_TIMEOUT_CSV_INSTALL=15m finsightctl bootstrap`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.BootstrapOptions{
				ConfigPath: configPath,
				Kubeconfig: kubeconfig,
				Verbose:    verbose,
			}
			return handlers.Bootstrap(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: finsight.yaml)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
