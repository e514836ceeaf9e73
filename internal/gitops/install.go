package gitops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/finsight-ai/finsightctl/internal/kube"
)

// InstallStatus is the observed state of an operator installation,
// recomputed from the cluster on every poll tick.
type InstallStatus struct {
	CSVName string
	Phase   operatorsv1alpha1.ClusterServiceVersionPhase
	Version semver.Version
}

func (s *InstallStatus) String() string {
	if s == nil || s.CSVName == "" {
		return "no csv matching package yet"
	}
	phase := string(s.Phase)
	if phase == "" {
		phase = "Unknown"
	}
	return fmt.Sprintf("csv %s phase %s", s.CSVName, phase)
}

// Succeeded reports whether the installation reached its terminal success
// phase.
func (s *InstallStatus) Succeeded() bool {
	return s != nil && s.Phase == operatorsv1alpha1.CSVPhaseSucceeded
}

// Installer observes the cluster service version that OLM materializes for a
// subscription.
type Installer struct {
	client *kube.Client
}

// NewInstaller returns an Installer backed by the given cluster client.
func NewInstaller(client *kube.Client) *Installer {
	return &Installer{client: client}
}

// Status fetches the current installation state for the package in the given
// namespace. A nil CSV name means no matching CSV exists yet, which is the
// normal state right after the subscription is applied.
func (i *Installer) Status(ctx context.Context, namespace, pkg string) (*InstallStatus, error) {
	csvs := &operatorsv1alpha1.ClusterServiceVersionList{}
	if err := i.client.Resources().List(ctx, csvs, crclient.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("failed to list cluster service versions in %s: %w", namespace, err)
	}

	// CSV names embed the package ("openshift-gitops-operator.v1.12.0").
	// The first match in list order wins; upgrades briefly leave two around.
	for idx := range csvs.Items {
		csv := &csvs.Items[idx]
		if !strings.Contains(csv.Name, pkg) {
			continue
		}
		return &InstallStatus{
			CSVName: csv.Name,
			Phase:   csv.Status.Phase,
			Version: csv.Spec.Version.Version,
		}, nil
	}
	return &InstallStatus{}, nil
}

// WaitForSucceeded polls until the package's CSV reaches phase Succeeded.
// If minVersion is non-empty the installed version must satisfy it. On
// timeout the error carries the last observed phase, including Failed; OLM
// retries failed installs on its own, so Failed is not treated as terminal
// before the deadline.
func (i *Installer) WaitForSucceeded(ctx context.Context, namespace, pkg, minVersion string, interval, timeout time.Duration) (*InstallStatus, error) {
	var last *InstallStatus

	stage := fmt.Sprintf("operator %s install", pkg)
	err := kube.PollUntil(ctx, stage, interval, timeout, func(ctx context.Context) (bool, string, error) {
		status, err := i.Status(ctx, namespace, pkg)
		if err != nil {
			// Listing can fail transiently while OLM registers the CRDs.
			return false, fmt.Sprintf("csv list failed: %v", err), nil
		}
		last = status
		return status.Succeeded(), status.String(), nil
	})
	if err != nil {
		return last, err
	}

	if minVersion != "" {
		required, err := semver.Parse(minVersion)
		if err != nil {
			return last, fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
		}
		if last.Version.LT(required) {
			return last, fmt.Errorf("installed csv %s version %s is below required minimum %s",
				last.CSVName, last.Version, required)
		}
	}
	return last, nil
}
