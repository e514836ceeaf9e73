package gitops

import (
	"context"
	"fmt"

	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/finsight-ai/finsightctl/internal/config"
	"github.com/finsight-ai/finsightctl/internal/kube"
)

// FieldOwner identifies finsightctl as the manager of server-side applied
// fields.
const FieldOwner = "finsightctl"

// Ensurer creates the installation prerequisites when they are absent and
// leaves them untouched when they are not. Every method is safe to rerun and
// safe against concurrent creators.
type Ensurer struct {
	client *kube.Client
}

// NewEnsurer returns an Ensurer backed by the given cluster client.
func NewEnsurer(client *kube.Client) *Ensurer {
	return &Ensurer{client: client}
}

// EnsureNamespace creates the namespace if it does not exist. It reports
// whether this call created it. Losing a creation race to another writer
// counts as success.
func (e *Ensurer) EnsureNamespace(ctx context.Context, name string) (bool, error) {
	_, err := e.client.Kubernetes().CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return false, nil
	}
	if !apierrors.IsNotFound(err) {
		return false, fmt.Errorf("failed to get namespace %s: %w", name, err)
	}

	namespace := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if _, err := e.client.Kubernetes().CoreV1().Namespaces().Create(ctx, namespace, metav1.CreateOptions{}); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return true, nil
}

// EnsureOperatorGroup creates an operator group in the namespace if none
// exists yet. OLM refuses to install into a namespace with more than one
// group, so any existing group is adopted as-is regardless of its name.
// An empty target list means the AllNamespaces install mode.
func (e *Ensurer) EnsureOperatorGroup(ctx context.Context, namespace, name string, targetNamespaces []string) (bool, error) {
	existing := &operatorsv1.OperatorGroupList{}
	if err := e.client.Resources().List(ctx, existing, crclient.InNamespace(namespace)); err != nil {
		return false, fmt.Errorf("failed to list operator groups in %s: %w", namespace, err)
	}
	if len(existing.Items) > 0 {
		return false, nil
	}

	group := &operatorsv1.OperatorGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: operatorsv1.OperatorGroupSpec{
			TargetNamespaces: targetNamespaces,
		},
	}
	if err := e.client.Resources().Create(ctx, group); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create operator group %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// ApplySubscription declaratively applies the operator subscription using
// Server-Side Apply. Unlike the namespace and operator group, the
// subscription is always re-applied so that catalog or channel changes in
// the configuration take effect on rerun.
func (e *Ensurer) ApplySubscription(ctx context.Context, operator config.OperatorConfig) error {
	subscription := &operatorsv1alpha1.Subscription{
		TypeMeta: metav1.TypeMeta{
			Kind:       operatorsv1alpha1.SubscriptionKind,
			APIVersion: operatorsv1alpha1.SchemeGroupVersion.String(),
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      operator.Package,
			Namespace: operator.Namespace,
		},
		Spec: &operatorsv1alpha1.SubscriptionSpec{
			CatalogSource:          operator.CatalogSource,
			CatalogSourceNamespace: operator.CatalogNamespace,
			Package:                operator.Package,
			Channel:                operator.Channel,
			InstallPlanApproval:    operatorsv1alpha1.ApprovalAutomatic,
		},
	}

	err := e.client.Resources().Patch(ctx, subscription, crclient.Apply,
		crclient.FieldOwner(FieldOwner), crclient.ForceOwnership)
	if err != nil {
		return fmt.Errorf("failed to apply subscription %s/%s: %w", operator.Namespace, operator.Package, err)
	}
	return nil
}

// EnsureTargetNamespaces creates any missing grant target namespaces. It
// returns the names it created.
func (e *Ensurer) EnsureTargetNamespaces(ctx context.Context, namespaces []string) ([]string, error) {
	var created []string
	for _, name := range namespaces {
		didCreate, err := e.EnsureNamespace(ctx, name)
		if err != nil {
			return created, err
		}
		if didCreate {
			created = append(created, name)
		}
	}
	return created, nil
}
