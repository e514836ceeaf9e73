package gitops

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/finsight-ai/finsightctl/internal/kube"
)

// Identity is a service account the GitOps controller reconciles as.
type Identity struct {
	Namespace string
	Name      string
}

// User returns the username the API server assigns to this identity.
func (id Identity) User() string {
	return kube.ServiceAccountUser(id.Namespace, id.Name)
}

func (id Identity) String() string {
	return id.Namespace + "/" + id.Name
}

// Resolver probes the candidate service-account names for the ones that
// actually exist on this cluster.
type Resolver struct {
	client *kube.Client
}

// NewResolver returns a Resolver backed by the given cluster client.
func NewResolver(client *kube.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the existing identities among the candidates, in candidate
// order. The first candidate is the primary: the operator materializes it
// asynchronously after its pods come up, so the resolver waits for it within
// the given budget. The remaining candidates are legacy aliases from older
// operator versions and are probed exactly once.
//
// A missing primary fails resolution unless allowMissingPrimary is set; an
// entirely empty result always fails with ErrPrimaryIdentityMissing.
func (r *Resolver) Resolve(ctx context.Context, namespace string, candidates []string, allowMissingPrimary bool, interval, timeout time.Duration) ([]Identity, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates configured", ErrPrimaryIdentityMissing)
	}

	var resolved []Identity

	primary := candidates[0]
	stage := fmt.Sprintf("service account %s/%s", namespace, primary)
	err := kube.PollUntil(ctx, stage, interval, timeout, func(ctx context.Context) (bool, string, error) {
		exists, err := r.exists(ctx, namespace, primary)
		if err != nil {
			return false, "", err
		}
		if !exists {
			return false, "service account not found", nil
		}
		return true, "service account exists", nil
	})
	switch {
	case err == nil:
		resolved = append(resolved, Identity{Namespace: namespace, Name: primary})
	case kube.IsTimeout(err) && allowMissingPrimary:
		// Tolerated; a legacy alias may still carry the installation.
	case kube.IsTimeout(err):
		return nil, fmt.Errorf("%w: %w", ErrPrimaryIdentityMissing, err)
	default:
		return nil, fmt.Errorf("failed to probe service account %s/%s: %w", namespace, primary, err)
	}

	aliases, err := r.Probe(ctx, namespace, candidates[1:])
	if err != nil {
		return nil, err
	}
	resolved = append(resolved, aliases...)

	if len(resolved) == 0 {
		return nil, fmt.Errorf("%w: probed %v in namespace %s", ErrPrimaryIdentityMissing, candidates, namespace)
	}
	return resolved, nil
}

// Probe returns the candidates that exist right now, in candidate order,
// without waiting for any of them.
func (r *Resolver) Probe(ctx context.Context, namespace string, candidates []string) ([]Identity, error) {
	var found []Identity
	for _, name := range candidates {
		exists, err := r.exists(ctx, namespace, name)
		if err != nil {
			return nil, fmt.Errorf("failed to probe service account %s/%s: %w", namespace, name, err)
		}
		if exists {
			found = append(found, Identity{Namespace: namespace, Name: name})
		}
	}
	return found, nil
}

func (r *Resolver) exists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := r.client.Kubernetes().CoreV1().ServiceAccounts(namespace).Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}
