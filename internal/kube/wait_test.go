package kube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newTestPod(namespace, name string, ready bool) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
		},
	}
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	pod.Status.Conditions = []corev1.PodCondition{
		{Type: corev1.PodReady, Status: status},
	}
	return pod
}

func TestWaitForNamespace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("succeeds when namespace exists", func(t *testing.T) {
		t.Parallel()
		//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
		clientset := fake.NewSimpleClientset(&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: "openshift-gitops"},
		})
		c := NewFromClients(clientset, nil, nil, nil)

		err := c.WaitForNamespace(ctx, "openshift-gitops", time.Millisecond, 50*time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("times out when namespace is absent", func(t *testing.T) {
		t.Parallel()
		//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
		clientset := fake.NewSimpleClientset()
		c := NewFromClients(clientset, nil, nil, nil)

		err := c.WaitForNamespace(ctx, "missing", time.Millisecond, 20*time.Millisecond)
		require.Error(t, err)

		var timeoutErr *TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "namespace missing", timeoutErr.Stage)
		assert.Equal(t, "namespace not found", timeoutErr.LastObserved)
	})
}

func TestWaitForPodsReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("succeeds when all pods are ready", func(t *testing.T) {
		t.Parallel()
		//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
		clientset := fake.NewSimpleClientset(
			newTestPod("openshift-gitops", "server-0", true),
			newTestPod("openshift-gitops", "repo-0", true),
		)
		c := NewFromClients(clientset, nil, nil, nil)

		err := c.WaitForPodsReady(ctx, "openshift-gitops", time.Millisecond, 50*time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("empty namespace does not count as ready", func(t *testing.T) {
		t.Parallel()
		//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
		clientset := fake.NewSimpleClientset()
		c := NewFromClients(clientset, nil, nil, nil)

		err := c.WaitForPodsReady(ctx, "openshift-gitops", time.Millisecond, 20*time.Millisecond)
		require.Error(t, err)

		var timeoutErr *TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "no pods scheduled yet", timeoutErr.LastObserved)
	})

	t.Run("reports partial readiness on timeout", func(t *testing.T) {
		t.Parallel()
		//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
		clientset := fake.NewSimpleClientset(
			newTestPod("openshift-gitops", "server-0", true),
			newTestPod("openshift-gitops", "repo-0", false),
		)
		c := NewFromClients(clientset, nil, nil, nil)

		err := c.WaitForPodsReady(ctx, "openshift-gitops", time.Millisecond, 20*time.Millisecond)
		require.Error(t, err)

		var timeoutErr *TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "1/2 pods ready", timeoutErr.LastObserved)
	})
}

func TestIsPodReady(t *testing.T) {
	t.Parallel()

	t.Run("pending pod is not ready", func(t *testing.T) {
		t.Parallel()
		pod := newTestPod("ns", "p", true)
		pod.Status.Phase = corev1.PodPending
		assert.False(t, isPodReady(pod))
	})

	t.Run("running pod without ready condition is not ready", func(t *testing.T) {
		t.Parallel()
		pod := newTestPod("ns", "p", true)
		pod.Status.Conditions = nil
		assert.False(t, isPodReady(pod))
	})

	t.Run("running pod with true ready condition is ready", func(t *testing.T) {
		t.Parallel()
		assert.True(t, isPodReady(newTestPod("ns", "p", true)))
	})
}
