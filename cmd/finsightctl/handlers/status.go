package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finsight-ai/finsightctl/internal/config"
	"github.com/finsight-ai/finsightctl/internal/gitops"
)

// StatusOptions configures a status read.
type StatusOptions struct {
	ConfigPath string
	Kubeconfig string
	JSONOutput bool
}

// StatusReport is the machine-readable shape of the convergence state,
// used for --json output.
type StatusReport struct {
	ClusterName  string             `json:"clusterName,omitempty"`
	Subscription SubscriptionStatus `json:"subscription"`
	Operator     OperatorStatus     `json:"operator"`
	Controller   ControllerStatus   `json:"controller"`
	Identities   []string           `json:"identities"`
	Checks       *CheckSummary      `json:"checks,omitempty"`
}

// SubscriptionStatus reports the OLM subscription.
type SubscriptionStatus struct {
	Found bool   `json:"found"`
	State string `json:"state,omitempty"`
}

// OperatorStatus reports the operator CSV.
type OperatorStatus struct {
	Installed bool   `json:"installed"`
	CSVName   string `json:"csvName,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ControllerStatus reports the controller namespace and its pods.
type ControllerStatus struct {
	Namespace      string `json:"namespace"`
	NamespaceFound bool   `json:"namespaceFound"`
	ReadyPods      int    `json:"readyPods"`
	TotalPods      int    `json:"totalPods"`
}

// CheckSummary tallies the verification battery.
type CheckSummary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

// Status renders a one-shot, read-only view of the bootstrap state. It
// never creates or mutates cluster resources.
func Status(ctx context.Context, opts StatusOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	client, err := newKubeClient(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	orchestrator := gitops.NewOrchestrator(client, cfg, loadTimeouts(), newLogger(false), nil)
	status, err := orchestrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	if opts.JSONOutput {
		data, err := json.MarshalIndent(buildStatusReport(cfg, status), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if isInteractiveTTY() {
		fmt.Print(renderStatusStyled(cfg, status))
		return nil
	}

	printStatusPlain(cfg, status)
	return nil
}

// buildStatusReport converts the cluster status to its JSON shape.
func buildStatusReport(cfg *config.Config, status *gitops.ClusterStatus) *StatusReport {
	report := &StatusReport{
		ClusterName: cfg.ClusterName,
		Subscription: SubscriptionStatus{
			Found: status.SubscriptionFound,
			State: status.SubscriptionState,
		},
		Controller: ControllerStatus{
			Namespace:      cfg.Operator.ControllerNamespace,
			NamespaceFound: status.NamespaceFound,
			ReadyPods:      status.ReadyPods,
			TotalPods:      status.TotalPods,
		},
		Identities: make([]string, 0, len(status.Identities)),
	}

	if status.Install != nil && status.Install.CSVName != "" {
		report.Operator = OperatorStatus{
			Installed: status.Install.Succeeded(),
			CSVName:   status.Install.CSVName,
			Phase:     string(status.Install.Phase),
			Version:   status.Install.Version.String(),
		}
	}

	for _, identity := range status.Identities {
		report.Identities = append(report.Identities, identity.String())
	}

	if status.Report != nil {
		report.Checks = &CheckSummary{
			Passed:   status.Report.Passed(),
			Failed:   status.Report.Failed(),
			Warnings: status.Report.Warnings(),
		}
	}

	return report
}

// renderStatusStyled produces the terminal status view.
func renderStatusStyled(cfg *config.Config, status *gitops.ClusterStatus) string {
	var b strings.Builder

	title := "FinSight Bootstrap Status"
	if cfg.ClusterName != "" {
		title += ": " + cfg.ClusterName
	}

	b.WriteString("\n")
	b.WriteString(reportTitleStyle.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("═", len(title))))
	b.WriteString("\n\n")

	writeStatusRow(&b, status.SubscriptionFound, "Subscription", subscriptionSummary(status))
	writeStatusRow(&b, status.Install != nil && status.Install.Succeeded(), "Operator", installSummary(status.Install))
	controllerOK := status.NamespaceFound && status.TotalPods > 0 && status.ReadyPods == status.TotalPods
	writeStatusRow(&b, controllerOK, "Controller", controllerSummary(cfg, status))
	writeStatusRow(&b, len(status.Identities) > 0, "Identities", identitiesSummary(status.Identities))
	if status.Report != nil {
		checks := fmt.Sprintf("%d passed, %d failed, %d warnings",
			status.Report.Passed(), status.Report.Failed(), status.Report.Warnings())
		writeStatusRow(&b, status.Report.Failed() == 0, "Checks", checks)
	}

	b.WriteString("\n")
	return b.String()
}

// writeStatusRow writes one aligned, marked status row.
func writeStatusRow(b *strings.Builder, ok bool, label, detail string) {
	mark := reportGreenStyle.Render("✓")
	if !ok {
		mark = reportRedStyle.Render("✗")
	}
	b.WriteString(fmt.Sprintf("  %s  %-13s %s\n", mark, label, detail))
}

// printStatusPlain prints the status without styling.
func printStatusPlain(cfg *config.Config, status *gitops.ClusterStatus) {
	fmt.Printf("Subscription: %s\n", subscriptionSummary(status))
	fmt.Printf("Operator:     %s\n", installSummary(status.Install))
	fmt.Printf("Controller:   %s\n", controllerSummary(cfg, status))
	fmt.Printf("Identities:   %s\n", identitiesSummary(status.Identities))
	if status.Report != nil {
		fmt.Printf("Checks:       %d passed, %d failed, %d warnings\n",
			status.Report.Passed(), status.Report.Failed(), status.Report.Warnings())
	}
}

func subscriptionSummary(status *gitops.ClusterStatus) string {
	if !status.SubscriptionFound {
		return "not found"
	}
	if status.SubscriptionState != "" {
		return fmt.Sprintf("present (state %s)", status.SubscriptionState)
	}
	return "present"
}

func installSummary(install *gitops.InstallStatus) string {
	if install == nil || install.CSVName == "" {
		return "not installed"
	}
	if install.Succeeded() {
		return fmt.Sprintf("%s installed (version %s)", install.CSVName, install.Version)
	}
	return install.String()
}

func controllerSummary(cfg *config.Config, status *gitops.ClusterStatus) string {
	namespace := cfg.Operator.ControllerNamespace
	if !status.NamespaceFound {
		return fmt.Sprintf("namespace %s not found", namespace)
	}
	return fmt.Sprintf("namespace %s present, %d/%d pods ready",
		namespace, status.ReadyPods, status.TotalPods)
}

func identitiesSummary(identities []gitops.Identity) string {
	if len(identities) == 0 {
		return "none resolved"
	}
	names := make([]string, 0, len(identities))
	for _, identity := range identities {
		names = append(names, identity.String())
	}
	return strings.Join(names, ", ")
}
