package kube

import (
	"context"
	"fmt"
	"time"

	authenticationv1 "k8s.io/api/authentication/v1"
	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// ServiceAccountUser returns the username the API server assigns to a
// service account, e.g. "system:serviceaccount:openshift-gitops:argocd".
func ServiceAccountUser(namespace, name string) string {
	return fmt.Sprintf("system:serviceaccount:%s:%s", namespace, name)
}

// ServiceAccountGroups returns the groups every service account in the given
// namespace belongs to.
func ServiceAccountGroups(namespace string) []string {
	return []string{
		"system:serviceaccounts",
		"system:serviceaccounts:" + namespace,
	}
}

// CanI asks the API server whether the given user may perform the action
// described by attrs, without performing it. It returns the decision and the
// server's stated reason.
func (c *Client) CanI(ctx context.Context, user string, groups []string, attrs *authorizationv1.ResourceAttributes) (bool, string, error) {
	review := &authorizationv1.SubjectAccessReview{
		Spec: authorizationv1.SubjectAccessReviewSpec{
			User:               user,
			Groups:             groups,
			ResourceAttributes: attrs,
		},
	}

	result, err := c.clientset.AuthorizationV1().SubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", fmt.Errorf("failed to create subject access review: %w", err)
	}

	reason := result.Status.Reason
	if result.Status.EvaluationError != "" {
		reason = result.Status.EvaluationError
	}
	return result.Status.Allowed, reason, nil
}

// SelfCan asks the API server whether the current credentials may perform the
// action described by attrs.
func (c *Client) SelfCan(ctx context.Context, attrs *authorizationv1.ResourceAttributes) (bool, error) {
	review := &authorizationv1.SelfSubjectAccessReview{
		Spec: authorizationv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: attrs,
		},
	}

	result, err := c.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to create self subject access review: %w", err)
	}
	return result.Status.Allowed, nil
}

// MintServiceAccountToken requests a short-lived token for the service
// account via the TokenRequest API. Clusters may disable token requests for
// arbitrary callers, so failures here are expected to be survivable.
func (c *Client) MintServiceAccountToken(ctx context.Context, namespace, name string, ttl time.Duration) (string, error) {
	expiration := int64(ttl.Seconds())
	request := &authenticationv1.TokenRequest{
		Spec: authenticationv1.TokenRequestSpec{
			ExpirationSeconds: &expiration,
		},
	}

	result, err := c.clientset.CoreV1().ServiceAccounts(namespace).CreateToken(ctx, name, request, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create token for %s/%s: %w", namespace, name, err)
	}
	return result.Status.Token, nil
}

// TokenKubernetes builds a clientset that authenticates with the given bearer
// token against the same API server as this client.
func (c *Client) TokenKubernetes(token string) (kubernetes.Interface, error) {
	if c.restConfig == nil {
		return nil, fmt.Errorf("no REST config available for token client")
	}

	tokenConfig := rest.CopyConfig(c.restConfig)
	tokenConfig.BearerToken = token
	tokenConfig.BearerTokenFile = ""
	tokenConfig.Username = ""
	tokenConfig.Password = ""
	tokenConfig.CertFile = ""
	tokenConfig.CertData = nil
	tokenConfig.KeyFile = ""
	tokenConfig.KeyData = nil
	tokenConfig.ExecProvider = nil
	tokenConfig.AuthProvider = nil

	clientset, err := kubernetes.NewForConfig(tokenConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create token clientset: %w", err)
	}
	return clientset, nil
}
