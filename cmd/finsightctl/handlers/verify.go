package handlers

import (
	"context"
	"fmt"

	"github.com/finsight-ai/finsightctl/internal/gitops"
)

// VerifyOptions configures a standalone verification run.
type VerifyOptions struct {
	ConfigPath string
	Kubeconfig string
	Verbose    bool
}

// Verify resolves the controller identities and runs the verification
// battery without installing or granting anything. Findings are advisory;
// the command fails only when the cluster cannot be reached or the
// identities cannot be resolved at all.
func Verify(ctx context.Context, opts VerifyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := newLogger(opts.Verbose)

	client, err := newKubeClient(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	orchestrator := gitops.NewOrchestrator(client, cfg, loadTimeouts(), logger, nil)
	result, err := orchestrator.VerifyOnly(ctx)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	printReport(cfg.ClusterName, result.Report)
	return nil
}
