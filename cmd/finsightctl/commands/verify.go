package commands

import (
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/handlers"
)

// Verify returns the command for verifying an already bootstrapped cluster.
//
// This command resolves the controller identities and runs the verification
// battery without installing or granting anything. It is safe against any
// cluster: nothing is created or changed.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: finsight.yaml)
//	--kubeconfig: Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)
//	--verbose, -v: Enable debug logging
func Verify() *cobra.Command {
	var (
		configPath string
		kubeconfig string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the GitOps controller's privileges",
		Long: `Verify that the GitOps controller holds its expected privileges.

This command runs the same verification battery that concludes a bootstrap:
role binding presence, an access-review battery impersonating the controller
identity, and a live read with a freshly minted service account token.

Findings are advisory and the command exits 0 even when checks fail; use
the report to decide whether a bootstrap rerun is needed.

Examples:
  # Verify using finsight.yaml in the current directory
  finsightctl verify

  # Verify a specific cluster
  finsightctl verify -c production.yaml --kubeconfig prod-kubeconfig`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.VerifyOptions{
				ConfigPath: configPath,
				Kubeconfig: kubeconfig,
				Verbose:    verbose,
			}
			return handlers.Verify(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: finsight.yaml)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
