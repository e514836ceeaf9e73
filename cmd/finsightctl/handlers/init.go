package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight-ai/finsightctl/internal/config/wizard"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// wizardIsTTY reports whether stdout is an interactive terminal.
	wizardIsTTY = isInteractiveTTY

	// wizardFileExists checks if the output file exists.
	wizardFileExists = wizard.FileExists

	// wizardConfirmOverwrite prompts before overwriting an existing file.
	wizardConfirmOverwrite = wizard.ConfirmOverwrite

	// wizardRunWizard runs the interactive wizard.
	wizardRunWizard = wizard.RunWizard

	// wizardBuildConfig converts wizard answers to a config.
	wizardBuildConfig = wizard.BuildConfig

	// wizardWriteConfig writes the config to a file.
	wizardWriteConfig = wizard.WriteConfig
)

// Init runs the interactive configuration wizard and writes the result to
// outputPath. With advanced, catalog, identity, eventing, and metrics
// questions are included; with fullOutput the generated YAML lists every
// option instead of only the ones that differ from the defaults.
func Init(ctx context.Context, outputPath string, advanced, fullOutput bool) error {
	if !wizardIsTTY() {
		return fmt.Errorf("init needs an interactive terminal; write %s by hand instead", outputPath)
	}

	if wizardFileExists(outputPath) {
		overwrite, err := wizardConfirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to prompt for confirmation: %w", err)
		}
		if !overwrite {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printWelcome(advanced, fullOutput)

	result, err := wizardRunWizard(ctx, advanced)
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	cfg := wizardBuildConfig(result)

	if err := wizardWriteConfig(cfg, outputPath, fullOutput); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, result, fullOutput)
	return nil
}

// printWelcome prints the wizard welcome message.
func printWelcome(advanced, fullOutput bool) {
	fmt.Println()
	fmt.Println("finsightctl - FinSight GitOps bootstrap")
	fmt.Println("=======================================")
	fmt.Println()
	fmt.Println("This wizard creates the bootstrap configuration for your cluster.")
	if advanced {
		fmt.Println("Advanced mode: catalog, identity, eventing, and metrics questions included.")
	}
	if !fullOutput {
		fmt.Println("Only values that differ from the defaults will be written.")
	}
	fmt.Println()
}

// printInitSuccess prints the configuration summary and next steps.
func printInitSuccess(outputPath string, result *wizard.WizardResult, fullOutput bool) {
	operatorLabel := result.OperatorPreset
	if preset, ok := wizard.PresetByKey(result.OperatorPreset); ok {
		operatorLabel = preset.Label
	}

	clusterRole := "none"
	if result.GrantClusterAdmin {
		clusterRole = "cluster-admin"
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Bootstrap Summary")
	fmt.Println("-----------------")
	fmt.Printf("  Cluster:        %s\n", result.ClusterName)
	fmt.Printf("  Operator:       %s\n", operatorLabel)
	fmt.Printf("  Channel:        %s\n", result.Channel)
	fmt.Printf("  Cluster role:   %s\n", clusterRole)
	if len(result.TargetNamespaces) > 0 {
		fmt.Printf("  Namespace role: %s in %s\n",
			result.NamespaceRole, strings.Join(result.TargetNamespaces, ", "))
	}
	fmt.Printf("  Inbox:          %s/%s\n", result.MinIOEndpoint, result.MinIOBucket)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Point KUBECONFIG at a cluster-admin kubeconfig:")
	fmt.Println("     export KUBECONFIG=<path>")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	if !fullOutput {
		fmt.Println("     (rerun init with --full for a YAML listing every option)")
	}
	fmt.Println()
	fmt.Println("  3. Bootstrap the GitOps stack:")
	fmt.Printf("     finsightctl bootstrap -c %s\n", outputPath)
	fmt.Println()
}
