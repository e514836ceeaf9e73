// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/finsight-ai/finsightctl/internal/config"
	"github.com/finsight-ai/finsightctl/internal/gitops"
	"github.com/finsight-ai/finsightctl/internal/kube"
	"github.com/finsight-ai/finsightctl/internal/metrics"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given and FINSIGHT_CONFIG is unset.
const defaultConfigFile = "finsight.yaml"

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newKubeClient connects to the cluster.
	newKubeClient = kube.NewFromKubeconfig

	// loadConfigFile loads config from a file.
	loadConfigFile = config.LoadFile

	// loadTimeouts loads the wait budgets from the environment.
	loadTimeouts = config.LoadTimeouts

	// pushMetrics sends the run metrics to the configured gateway.
	pushMetrics = func(recorder *metrics.Recorder, gatewayURL, cluster string) error {
		return recorder.Push(gatewayURL, cluster)
	}
)

// BootstrapOptions configures a bootstrap run.
type BootstrapOptions struct {
	ConfigPath string
	Kubeconfig string
	Verbose    bool
}

// Bootstrap runs the full bootstrap flow: ensure the operator installation,
// wait for it to converge, resolve the controller identity, grant the
// configured roles, and verify the result.
//
// Fatal step failures surface as errors. Verification mismatches do not:
// they are printed in the advisory report and the command still exits 0.
func Bootstrap(ctx context.Context, opts BootstrapOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := newLogger(opts.Verbose)
	if cfg.ClusterName != "" {
		logger.WithField("cluster", cfg.ClusterName).Info("starting bootstrap")
	} else {
		logger.Info("starting bootstrap")
	}

	client, err := newKubeClient(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	recorder := metrics.NewRecorder()
	orchestrator := gitops.NewOrchestrator(client, cfg, loadTimeouts(), logger, recorder)

	result, runErr := orchestrator.Run(ctx)

	// Push whatever was recorded, success or not; a failed run's step
	// timings are the interesting ones.
	if err := pushMetrics(recorder, cfg.Metrics.PushgatewayURL, cfg.ClusterName); err != nil {
		logger.WithError(err).Warn("metrics push failed")
	}

	if runErr != nil {
		return describeFailure(runErr)
	}

	printReport(cfg.ClusterName, result.Report)
	printBootstrapSuccess(result)
	return nil
}

// loadConfig loads the bootstrap configuration and overlays FINSIGHT_*
// environment variables. Without an explicit path the default file is used
// when present, and the built-in defaults otherwise.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("FINSIGHT_CONFIG")
	}
	if configPath == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			configPath = defaultConfigFile
		}
	}

	var cfg *config.Config
	if configPath != "" {
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger. Verbose enables the debug lines the poll
// ticks and passed checks log at.
func newLogger(verbose bool) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// describeFailure classifies the failing step for the top-level error line.
func describeFailure(err error) error {
	switch {
	case gitops.IsPrecondition(err):
		return fmt.Errorf("bootstrap preflight failed: %w", err)
	case kube.IsTimeout(err):
		return fmt.Errorf("bootstrap timed out: %w", err)
	case gitops.IsGrantFailure(err):
		return fmt.Errorf("bootstrap grant failed: %w", err)
	default:
		return fmt.Errorf("bootstrap failed: %w", err)
	}
}

// printBootstrapSuccess outputs the completion message and next steps.
func printBootstrapSuccess(result *gitops.Result) {
	fmt.Printf("\nBootstrap complete!\n")

	if result.Install != nil && result.Install.CSVName != "" {
		fmt.Printf("Operator:   %s (version %s)\n", result.Install.CSVName, result.Install.Version)
	}
	for _, identity := range result.Identities {
		fmt.Printf("Identity:   %s\n", identity)
	}
	fmt.Printf("Grants:     %d ensured\n", len(result.Grants))

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  finsightctl pipeline apply   # wire the audio inbox to the handler\n")
	fmt.Printf("  finsightctl status           # re-check convergence any time\n")
}
