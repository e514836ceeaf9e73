package gitops

import (
	"context"
	"fmt"

	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// ClusterStatus is a read-only snapshot of the bootstrap surface, gathered
// without creating or changing anything.
type ClusterStatus struct {
	SubscriptionFound bool
	SubscriptionState string
	Install           *InstallStatus
	NamespaceFound    bool
	ReadyPods         int
	TotalPods         int
	Identities        []Identity
	Report            *Report
}

// Status collects the current convergence state: subscription, CSV phase,
// controller namespace and pods, resolved identities, and the verification
// battery for whatever identities exist.
func (o *Orchestrator) Status(ctx context.Context) (*ClusterStatus, error) {
	operator := o.cfg.Operator
	status := &ClusterStatus{}

	subscription := &operatorsv1alpha1.Subscription{}
	err := o.client.Resources().Get(ctx, crclient.ObjectKey{
		Namespace: operator.Namespace,
		Name:      operator.Package,
	}, subscription)
	switch {
	case err == nil:
		status.SubscriptionFound = true
		status.SubscriptionState = string(subscription.Status.State)
	case !apierrors.IsNotFound(err):
		return nil, fmt.Errorf("failed to get subscription %s/%s: %w", operator.Namespace, operator.Package, err)
	}

	install, err := o.installer.Status(ctx, operator.Namespace, operator.Package)
	if err != nil {
		return nil, err
	}
	status.Install = install

	_, err = o.client.Kubernetes().CoreV1().Namespaces().Get(ctx, operator.ControllerNamespace, metav1.GetOptions{})
	switch {
	case err == nil:
		status.NamespaceFound = true
	case !apierrors.IsNotFound(err):
		return nil, fmt.Errorf("failed to get namespace %s: %w", operator.ControllerNamespace, err)
	}

	if status.NamespaceFound {
		ready, total, err := o.client.ReadyPods(ctx, operator.ControllerNamespace)
		if err != nil {
			return nil, err
		}
		status.ReadyPods = ready
		status.TotalPods = total
	}

	identities, err := o.resolver.Probe(ctx, operator.ControllerNamespace, o.cfg.Identity.Candidates)
	if err != nil {
		return nil, err
	}
	status.Identities = identities

	if len(identities) > 0 {
		status.Report = o.verifier.Verify(ctx, identities, o.planGrants(identities))
	}

	return status, nil
}
