package pipeline

import (
	"context"
	"fmt"

	"github.com/finsight-ai/finsightctl/internal/kube"
)

// fieldOwner identifies finsightctl as the manager of the applied chain.
const fieldOwner = "finsightctl"

// Applier writes the chain to the cluster with Server-Side Apply. Reruns
// converge on the same objects; fields owned by other managers are left
// alone.
type Applier struct {
	client *kube.Client
}

// NewApplier returns an Applier backed by the given cluster client.
func NewApplier(client *kube.Client) *Applier {
	return &Applier{client: client}
}

// Apply applies the chain in order and returns one kind/name entry per
// applied object. The first failure aborts; already-applied objects stay.
func (a *Applier) Apply(ctx context.Context, chain *Chain) ([]string, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	var applied []string
	for _, obj := range chain.Objects() {
		if err := a.client.ApplyObject(ctx, obj, fieldOwner); err != nil {
			return applied, fmt.Errorf("failed to apply %s %s/%s: %w",
				obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		applied = append(applied, obj.GetKind()+"/"+obj.GetName())
	}
	return applied, nil
}
