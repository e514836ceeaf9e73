package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// WaitForNamespace waits until the named namespace is observable.
func (c *Client) WaitForNamespace(ctx context.Context, name string, interval, timeout time.Duration) error {
	stage := fmt.Sprintf("namespace %s", name)
	return PollUntil(ctx, stage, interval, timeout, func(ctx context.Context) (bool, string, error) {
		_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, "namespace not found", nil
		}
		return true, "namespace exists", nil
	})
}

// ReadyPods reports how many pods in the namespace are ready.
func (c *Client) ReadyPods(ctx context.Context, namespace string) (ready, total int, err error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	for i := range pods.Items {
		if isPodReady(&pods.Items[i]) {
			ready++
		}
	}
	return ready, len(pods.Items), nil
}

// WaitForPodsReady waits until the namespace has at least one pod and every
// pod in it is ready. An empty pod list does not count as success; the
// workload may simply not have been scheduled yet.
func (c *Client) WaitForPodsReady(ctx context.Context, namespace string, interval, timeout time.Duration) error {
	stage := fmt.Sprintf("pods in %s", namespace)
	return PollUntil(ctx, stage, interval, timeout, func(ctx context.Context) (bool, string, error) {
		ready, total, err := c.ReadyPods(ctx, namespace)
		if err != nil {
			return false, fmt.Sprintf("pod list failed: %v", err), nil
		}
		if total == 0 {
			return false, "no pods scheduled yet", nil
		}
		return ready == total, fmt.Sprintf("%d/%d pods ready", ready, total), nil
	})
}

// isPodReady checks if a pod is running with a true Ready condition.
func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}

	return false
}
