package commands

import (
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsightctl/cmd/finsightctl/handlers"
)

// Init returns the command for interactively creating a configuration file.
//
// This command guides users through creating a bootstrap configuration YAML
// file using an interactive wizard with text inputs and single-select
// prompts.
//
// Flags:
//
//	--output, -o: Path to output file (default "finsight.yaml")
//	--advanced, -a: Show advanced configuration options
//	--full, -f: Output full YAML with all options (default: minimal output)
func Init() *cobra.Command {
	var (
		outputPath string
		advanced   bool
		fullOutput bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a bootstrap configuration",
		Long: `Interactively create a bootstrap configuration file.

This command guides you through configuring the GitOps bootstrap step by
step. It will ask about:

  - Cluster name
  - Operator distribution (OpenShift GitOps or community Argo CD) and channel
  - Privilege grants (cluster-admin and namespace roles)
  - Audio inbox endpoint and bucket

Use --advanced for additional options like catalog coordinates, identity
candidates, eventing settings, and metrics push.

Use --full to output the complete YAML with all configuration options
(useful for manual editing). By default, a minimal YAML is generated with
only the values that differ from the defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, advanced, fullOutput)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "finsight.yaml", "Output file path")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "Show advanced configuration options")
	cmd.Flags().BoolVarP(&fullOutput, "full", "f", false, "Output full YAML with all options")

	return cmd
}
