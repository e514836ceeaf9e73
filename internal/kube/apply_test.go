package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	clienttesting "k8s.io/client-go/testing"
)

// newApplyTestMapper builds a REST mapper covering the kinds the apply tests
// exercise, without a discovery endpoint.
func newApplyTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name: "",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name: "eventing.knative.dev",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "eventing.knative.dev/v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "eventing.knative.dev/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "brokers", Namespaced: true, Kind: "Broker"},
					{Name: "triggers", Namespaced: true, Kind: "Trigger"},
				},
			},
		},
	}

	return restmapper.NewDiscoveryRESTMapper(resources)
}

func newApplyTestClient() (*Client, *dynamicfake.FakeDynamicClient) {
	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset()
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)

	return NewFromClients(clientset, nil, dynamicClient, newApplyTestMapper()), dynamicClient
}

func TestApplyManifests_EmptyInput(t *testing.T) {
	t.Parallel()
	c, _ := newApplyTestClient()

	require.NoError(t, c.ApplyManifests(context.Background(), []byte(``), "finsightctl"))
	require.NoError(t, c.ApplyManifests(context.Background(), []byte("---\n---\n"), "finsightctl"))
}

func TestApplyManifests_InvalidYAML(t *testing.T) {
	t.Parallel()
	c, _ := newApplyTestClient()

	err := c.ApplyManifests(context.Background(), []byte(`{invalid yaml: [`), "finsightctl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode manifest")
}

func TestApplyObject_NoKind(t *testing.T) {
	t.Parallel()
	c, _ := newApplyTestClient()

	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "v1",
			"metadata":   map[string]interface{}{"name": "test"},
		},
	}

	err := c.ApplyObject(context.Background(), obj, "finsightctl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kind set")
}

func TestApplyObject_UnknownKind(t *testing.T) {
	t.Parallel()
	c, _ := newApplyTestClient()

	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "unknown.dev/v1",
			"kind":       "Mystery",
			"metadata":   map[string]interface{}{"name": "test"},
		},
	}

	err := c.ApplyObject(context.Background(), obj, "finsightctl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REST mapping")
}

func TestApplyObject_PatchesWithApplyType(t *testing.T) {
	t.Parallel()
	c, dynamicClient := newApplyTestClient()

	var patched clienttesting.PatchAction
	dynamicClient.Fake.PrependReactor("patch", "brokers",
		func(action clienttesting.Action) (bool, runtime.Object, error) {
			patched = action.(clienttesting.PatchAction)
			return true, &unstructured.Unstructured{Object: map[string]interface{}{
				"apiVersion": "eventing.knative.dev/v1",
				"kind":       "Broker",
			}}, nil
		})

	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "eventing.knative.dev/v1",
			"kind":       "Broker",
			"metadata": map[string]interface{}{
				"name":      "audio-events",
				"namespace": "finsight-pipeline",
			},
		},
	}

	require.NoError(t, c.ApplyObject(context.Background(), obj, "finsightctl"))
	require.NotNil(t, patched)
	assert.Equal(t, types.ApplyPatchType, patched.GetPatchType())
	assert.Equal(t, "audio-events", patched.GetName())
	assert.Equal(t, "finsight-pipeline", patched.GetNamespace())
}
