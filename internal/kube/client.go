// Package kube wraps the Kubernetes clients the bootstrap flow needs: a typed
// clientset for core resources and access reviews, a controller-runtime client
// for the operator-lifecycle kinds, and a dynamic client with a REST mapper
// for applying arbitrary manifests.
package kube

import (
	"fmt"

	operatorsv1 "github.com/operator-framework/api/pkg/operators/v1"
	operatorsv1alpha1 "github.com/operator-framework/api/pkg/operators/v1alpha1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// Client bundles the clients used against a single cluster.
type Client struct {
	clientset     kubernetes.Interface
	resources     crclient.Client
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	restConfig    *rest.Config
}

// Scheme returns the runtime scheme covering the built-in types plus the
// operator-lifecycle kinds (Subscription, OperatorGroup, ClusterServiceVersion).
func Scheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to register client-go scheme: %w", err)
	}
	if err := operatorsv1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to register operators/v1 scheme: %w", err)
	}
	if err := operatorsv1alpha1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to register operators/v1alpha1 scheme: %w", err)
	}
	return scheme, nil
}

// NewFromKubeconfig creates a Client using the standard kubeconfig loading
// rules. An explicit path overrides KUBECONFIG and the default location.
func NewFromKubeconfig(kubeconfigPath string) (*Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules, &clientcmd.ConfigOverrides{},
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return NewFromRESTConfig(restConfig)
}

// NewFromRESTConfig creates a Client from an already resolved REST config.
func NewFromRESTConfig(restConfig *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	scheme, err := Scheme()
	if err != nil {
		return nil, err
	}
	resources, err := crclient.New(restConfig, crclient.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create resource client: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get API group resources: %w", err)
	}

	return &Client{
		clientset:     clientset,
		resources:     resources,
		dynamicClient: dynamicClient,
		mapper:        restmapper.NewDiscoveryRESTMapper(groupResources),
		restConfig:    restConfig,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(
	clientset kubernetes.Interface,
	resources crclient.Client,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
) *Client {
	return &Client{
		clientset:     clientset,
		resources:     resources,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

// Kubernetes returns the typed clientset.
func (c *Client) Kubernetes() kubernetes.Interface {
	return c.clientset
}

// Resources returns the controller-runtime client for CRD-backed kinds.
func (c *Client) Resources() crclient.Client {
	return c.resources
}
