package gitops

import (
	"context"
	"fmt"
	"time"

	authorizationv1 "k8s.io/api/authorization/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/finsight-ai/finsightctl/internal/kube"
)

// CheckStatus classifies one verification result.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckWarning CheckStatus = "warning"
)

// CheckResult is a single verification observation.
type CheckResult struct {
	Name   string
	Status CheckStatus
	Detail string
}

// Report aggregates the verification battery. Every requested check yields
// exactly one result whether it passed or not; the battery never aborts
// early.
type Report struct {
	Results []CheckResult
}

func (r *Report) add(name string, status CheckStatus, detail string) {
	r.Results = append(r.Results, CheckResult{Name: name, Status: status, Detail: detail})
}

func (r *Report) count(status CheckStatus) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Passed returns the number of passed checks.
func (r *Report) Passed() int { return r.count(CheckPassed) }

// Failed returns the number of failed checks.
func (r *Report) Failed() int { return r.count(CheckFailed) }

// Warnings returns the number of checks that could not be evaluated.
func (r *Report) Warnings() int { return r.count(CheckWarning) }

// Clean reports whether no check failed. Warnings do not count against a
// clean report.
func (r *Report) Clean() bool { return r.Failed() == 0 }

// Verifier confirms that the granted privileges are actually effective.
// Its findings are advisory: mismatches are reported, never acted on, and
// never change the run's outcome.
type Verifier struct {
	client   *kube.Client
	tokenTTL time.Duration

	// newTokenClient builds a clientset from a minted token. Swappable so
	// tests can observe the token path without a live API server.
	newTokenClient func(token string) (kubernetes.Interface, error)
}

// NewVerifier returns a Verifier backed by the given cluster client.
func NewVerifier(client *kube.Client, tokenTTL time.Duration) *Verifier {
	return &Verifier{
		client:         client,
		tokenTTL:       tokenTTL,
		newTokenClient: client.TokenKubernetes,
	}
}

// Verify runs the full battery: binding presence for every grant, an
// impersonated can-I battery for every grant, and a live token smoke test
// for the primary identity.
func (v *Verifier) Verify(ctx context.Context, identities []Identity, grants []Grant) *Report {
	report := &Report{}

	for _, grant := range grants {
		v.verifyBinding(ctx, report, grant)
	}
	for _, grant := range grants {
		v.verifyAccess(ctx, report, grant)
	}
	if len(identities) > 0 {
		v.verifyTokenAccess(ctx, report, identities[0])
	}

	return report
}

// verifyBinding confirms the grant's binding exists and lists the identity.
func (v *Verifier) verifyBinding(ctx context.Context, report *Report, grant Grant) {
	name := fmt.Sprintf("binding %s (%s)", grant.BindingName(), grant.Scope())
	subject := serviceAccountSubject(grant.Identity)

	if grant.Scope() == ClusterScope {
		binding, err := v.client.Kubernetes().RbacV1().ClusterRoleBindings().Get(ctx, grant.BindingName(), metav1.GetOptions{})
		switch {
		case apierrors.IsNotFound(err):
			report.add(name, CheckFailed, "cluster role binding not found")
		case err != nil:
			report.add(name, CheckWarning, fmt.Sprintf("could not read binding: %v", err))
		case !hasSubject(binding.Subjects, subject):
			report.add(name, CheckFailed, fmt.Sprintf("binding does not list %s", grant.Identity.User()))
		default:
			report.add(name, CheckPassed, "binding present with expected subject")
		}
		return
	}

	binding, err := v.client.Kubernetes().RbacV1().RoleBindings(grant.Namespace).Get(ctx, grant.BindingName(), metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		report.add(name, CheckFailed, "role binding not found")
	case err != nil:
		report.add(name, CheckWarning, fmt.Sprintf("could not read binding: %v", err))
	case !hasSubject(binding.Subjects, subject):
		report.add(name, CheckFailed, fmt.Sprintf("binding does not list %s", grant.Identity.User()))
	default:
		report.add(name, CheckPassed, "binding present with expected subject")
	}
}

// verifyAccess runs the impersonated can-I battery for one grant. A
// cluster-scoped grant is probed with cluster-wide namespace creation plus
// the workload battery in the identity's home namespace; a namespace-scoped
// grant is probed with the workload battery in its namespace.
func (v *Verifier) verifyAccess(ctx context.Context, report *Report, grant Grant) {
	if grant.Scope() == ClusterScope {
		v.checkCanI(ctx, report, grant.Identity, &authorizationv1.ResourceAttributes{
			Verb:     "create",
			Resource: "namespaces",
		})
		for _, attrs := range workloadBattery(grant.Identity.Namespace) {
			v.checkCanI(ctx, report, grant.Identity, attrs)
		}
		return
	}

	for _, attrs := range workloadBattery(grant.Namespace) {
		v.checkCanI(ctx, report, grant.Identity, attrs)
	}
}

// workloadBattery covers what the GitOps controller does day to day:
// deploying workloads, exposing them, and wiring services together.
func workloadBattery(namespace string) []*authorizationv1.ResourceAttributes {
	return []*authorizationv1.ResourceAttributes{
		{Verb: "create", Group: "apps", Resource: "deployments", Namespace: namespace},
		{Verb: "create", Resource: "services", Namespace: namespace},
		{Verb: "create", Group: "route.openshift.io", Resource: "routes", Namespace: namespace},
	}
}

func (v *Verifier) checkCanI(ctx context.Context, report *Report, identity Identity, attrs *authorizationv1.ResourceAttributes) {
	name := canIName(identity, attrs)

	allowed, reason, err := v.client.CanI(ctx, identity.User(), kube.ServiceAccountGroups(identity.Namespace), attrs)
	switch {
	case err != nil:
		report.add(name, CheckWarning, fmt.Sprintf("could not evaluate: %v", err))
	case allowed:
		report.add(name, CheckPassed, "allowed")
	default:
		detail := "denied"
		if reason != "" {
			detail = "denied: " + reason
		}
		report.add(name, CheckFailed, detail)
	}
}

func canIName(identity Identity, attrs *authorizationv1.ResourceAttributes) string {
	resource := attrs.Resource
	if attrs.Group != "" {
		resource = resource + "." + attrs.Group
	}
	if attrs.Namespace == "" {
		return fmt.Sprintf("%s can %s %s", identity.Name, attrs.Verb, resource)
	}
	return fmt.Sprintf("%s can %s %s in %s", identity.Name, attrs.Verb, resource, attrs.Namespace)
}

// verifyTokenAccess goes beyond can-I: it mints a real short-lived token for
// the identity and performs a read with it. Clusters may forbid token
// requests entirely, so every failure on this path degrades to a warning.
func (v *Verifier) verifyTokenAccess(ctx context.Context, report *Report, identity Identity) {
	name := fmt.Sprintf("live read as %s", identity.Name)

	token, err := v.client.MintServiceAccountToken(ctx, identity.Namespace, identity.Name, v.tokenTTL)
	if err != nil {
		report.add(name, CheckWarning, fmt.Sprintf("token request unavailable: %v", err))
		return
	}
	if token == "" {
		report.add(name, CheckWarning, "token request returned an empty token")
		return
	}

	clientset, err := v.newTokenClient(token)
	if err != nil {
		report.add(name, CheckWarning, fmt.Sprintf("could not build token client: %v", err))
		return
	}

	if _, err := clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
		report.add(name, CheckWarning, fmt.Sprintf("read with minted token failed: %v", err))
		return
	}
	report.add(name, CheckPassed, "listed namespaces with a minted token")
}
