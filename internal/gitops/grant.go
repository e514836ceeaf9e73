package gitops

import (
	"context"
	"fmt"

	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"

	"github.com/finsight-ai/finsightctl/internal/kube"
)

// ClusterScope marks a grant that applies cluster-wide rather than to a
// single namespace.
const ClusterScope = "cluster"

// Grant records one role binding requested for an identity. Namespace is
// empty for cluster-scoped grants.
type Grant struct {
	Identity  Identity
	Role      string
	Namespace string
}

// Scope returns ClusterScope or the namespace the binding lives in.
func (g Grant) Scope() string {
	if g.Namespace == "" {
		return ClusterScope
	}
	return g.Namespace
}

// BindingName returns the deterministic name for the grant's binding, so
// reruns find the binding they created before.
func (g Grant) BindingName() string {
	return g.Identity.Name + "-" + g.Role
}

// Grantor ensures role bindings exist for the resolved identities. It only
// ever adds: bindings and subjects are created or extended, never removed.
type Grantor struct {
	client *kube.Client
}

// NewGrantor returns a Grantor backed by the given cluster client.
func NewGrantor(client *kube.Client) *Grantor {
	return &Grantor{client: client}
}

// EnsureClusterRoleBinding binds the cluster role to the identity
// cluster-wide. It reports whether this call changed anything; an existing
// binding already listing the identity is left untouched.
func (g *Grantor) EnsureClusterRoleBinding(ctx context.Context, identity Identity, role string) (bool, error) {
	grant := Grant{Identity: identity, Role: role}
	bindings := g.client.Kubernetes().RbacV1().ClusterRoleBindings()
	subject := serviceAccountSubject(identity)

	changed := false
	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		existing, err := bindings.Get(ctx, grant.BindingName(), metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			binding := &rbacv1.ClusterRoleBinding{
				ObjectMeta: metav1.ObjectMeta{Name: grant.BindingName()},
				Subjects:   []rbacv1.Subject{subject},
				RoleRef:    clusterRoleRef(role),
			}
			_, err := bindings.Create(ctx, binding, metav1.CreateOptions{})
			if apierrors.IsAlreadyExists(err) {
				// Lost the creation race; re-read and extend if needed.
				return apierrors.NewConflict(rbacv1.Resource("clusterrolebindings"), grant.BindingName(), err)
			}
			if err == nil {
				changed = true
			}
			return err
		}
		if err != nil {
			return err
		}

		if existing.RoleRef.Name != role {
			return fmt.Errorf("binding %s exists with role %s; role references are immutable", grant.BindingName(), existing.RoleRef.Name)
		}
		if hasSubject(existing.Subjects, subject) {
			return nil
		}
		existing.Subjects = append(existing.Subjects, subject)
		if _, err := bindings.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, &GrantError{Identity: identity, Role: role, Scope: ClusterScope, Err: err}
	}
	return changed, nil
}

// EnsureRoleBinding binds the cluster role to the identity within one
// namespace. Semantics match EnsureClusterRoleBinding.
func (g *Grantor) EnsureRoleBinding(ctx context.Context, identity Identity, role, namespace string) (bool, error) {
	grant := Grant{Identity: identity, Role: role, Namespace: namespace}
	bindings := g.client.Kubernetes().RbacV1().RoleBindings(namespace)
	subject := serviceAccountSubject(identity)

	changed := false
	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		existing, err := bindings.Get(ctx, grant.BindingName(), metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			binding := &rbacv1.RoleBinding{
				ObjectMeta: metav1.ObjectMeta{
					Name:      grant.BindingName(),
					Namespace: namespace,
				},
				Subjects: []rbacv1.Subject{subject},
				RoleRef:  clusterRoleRef(role),
			}
			_, err := bindings.Create(ctx, binding, metav1.CreateOptions{})
			if apierrors.IsAlreadyExists(err) {
				return apierrors.NewConflict(rbacv1.Resource("rolebindings"), grant.BindingName(), err)
			}
			if err == nil {
				changed = true
			}
			return err
		}
		if err != nil {
			return err
		}

		if existing.RoleRef.Name != role {
			return fmt.Errorf("binding %s/%s exists with role %s; role references are immutable", namespace, grant.BindingName(), existing.RoleRef.Name)
		}
		if hasSubject(existing.Subjects, subject) {
			return nil
		}
		existing.Subjects = append(existing.Subjects, subject)
		if _, err := bindings.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, &GrantError{Identity: identity, Role: role, Scope: namespace, Err: err}
	}
	return changed, nil
}

func serviceAccountSubject(identity Identity) rbacv1.Subject {
	return rbacv1.Subject{
		Kind:      rbacv1.ServiceAccountKind,
		Name:      identity.Name,
		Namespace: identity.Namespace,
	}
}

// clusterRoleRef builds the role reference; both cluster and namespace
// scoped bindings here point at a ClusterRole.
func clusterRoleRef(role string) rbacv1.RoleRef {
	return rbacv1.RoleRef{
		APIGroup: rbacv1.GroupName,
		Kind:     "ClusterRole",
		Name:     role,
	}
}

func hasSubject(subjects []rbacv1.Subject, want rbacv1.Subject) bool {
	for _, s := range subjects {
		if s.Kind == want.Kind && s.Name == want.Name && s.Namespace == want.Namespace {
			return true
		}
	}
	return false
}
