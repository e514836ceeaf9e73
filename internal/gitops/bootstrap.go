package gitops

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	authorizationv1 "k8s.io/api/authorization/v1"

	"github.com/finsight-ai/finsightctl/internal/config"
	"github.com/finsight-ai/finsightctl/internal/kube"
	"github.com/finsight-ai/finsightctl/internal/metrics"
)

// Step names used in progress logs and metrics labels.
const (
	StepPreflight       = "preflight"
	StepEnsure          = "ensure-prerequisites"
	StepOperatorInstall = "wait-operator-install"
	StepControllerReady = "wait-controller-ready"
	StepResolveIdentity = "resolve-identities"
	StepGrant           = "grant-privileges"
	StepVerify          = "verify"
)

// Result summarizes a bootstrap run. On failure it carries whatever was
// computed before the failing step.
type Result struct {
	Install    *InstallStatus
	Identities []Identity
	Grants     []Grant
	Report     *Report
}

// Orchestrator drives the bootstrap flow end to end: ensure the
// installation prerequisites, wait for the operator to converge, resolve the
// reconciliation identities, grant them their roles, and verify the result.
// It runs strictly sequentially and keeps no state of its own; rerunning
// after a partial failure resumes by observing the cluster.
type Orchestrator struct {
	client   *kube.Client
	cfg      *config.Config
	timeouts *config.Timeouts
	logger   logrus.FieldLogger
	recorder *metrics.Recorder

	ensurer   *Ensurer
	installer *Installer
	resolver  *Resolver
	grantor   *Grantor
	verifier  *Verifier
}

// NewOrchestrator wires the bootstrap components. The recorder may be nil
// when no metrics emission is wanted.
func NewOrchestrator(client *kube.Client, cfg *config.Config, timeouts *config.Timeouts, logger logrus.FieldLogger, recorder *metrics.Recorder) *Orchestrator {
	return &Orchestrator{
		client:    client,
		cfg:       cfg,
		timeouts:  timeouts,
		logger:    logger,
		recorder:  recorder,
		ensurer:   NewEnsurer(client),
		installer: NewInstaller(client),
		resolver:  NewResolver(client),
		grantor:   NewGrantor(client),
		verifier:  NewVerifier(client, timeouts.TokenTTL),
	}
}

// Run executes the bootstrap flow. The first failing step aborts the run;
// nothing is rolled back, since every step is idempotent and a rerun
// resumes where the cluster state left off. Verification findings are
// advisory and never produce an error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	plan := []struct {
		name string
		run  func(context.Context, *Result) error
	}{
		{StepPreflight, o.preflight},
		{StepEnsure, o.ensurePrerequisites},
		{StepOperatorInstall, o.waitForOperator},
		{StepControllerReady, o.waitForController},
		{StepResolveIdentity, o.resolveIdentities},
		{StepGrant, o.grantPrivileges},
		{StepVerify, o.verify},
	}

	for _, step := range plan {
		stepLogger := o.logger.WithField("step", step.name)
		stepLogger.Info("starting")

		start := time.Now()
		err := step.run(ctx, result)
		duration := time.Since(start)
		o.recorder.ObserveStep(step.name, duration, err == nil)

		if err != nil {
			stepLogger.WithField("duration", duration.Round(time.Millisecond)).WithError(err).Error("step failed")
			return result, err
		}
		stepLogger.WithField("duration", duration.Round(time.Millisecond)).Info("completed")
	}

	return result, nil
}

// VerifyOnly resolves the identities and runs the verification battery
// without installing or granting anything. Used against clusters that have
// already been bootstrapped.
func (o *Orchestrator) VerifyOnly(ctx context.Context) (*Result, error) {
	result := &Result{}
	if err := o.resolveIdentities(ctx, result); err != nil {
		return result, err
	}
	result.Grants = o.planGrants(result.Identities)
	if err := o.verify(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

// preflight checks the caller's own credentials against everything the flow
// will attempt, before anything is written to the cluster.
func (o *Orchestrator) preflight(ctx context.Context, _ *Result) error {
	checks := []struct {
		name  string
		attrs *authorizationv1.ResourceAttributes
	}{
		{"create namespaces", &authorizationv1.ResourceAttributes{
			Verb: "create", Resource: "namespaces",
		}},
		{"create operator groups", &authorizationv1.ResourceAttributes{
			Verb: "create", Group: "operators.coreos.com", Resource: "operatorgroups",
			Namespace: o.cfg.Operator.Namespace,
		}},
		{"create subscriptions", &authorizationv1.ResourceAttributes{
			Verb: "create", Group: "operators.coreos.com", Resource: "subscriptions",
			Namespace: o.cfg.Operator.Namespace,
		}},
		{"create cluster role bindings", &authorizationv1.ResourceAttributes{
			Verb: "create", Group: "rbac.authorization.k8s.io", Resource: "clusterrolebindings",
		}},
	}

	for _, check := range checks {
		allowed, err := o.client.SelfCan(ctx, check.attrs)
		if err != nil {
			return &PreconditionError{Check: check.name, Reason: err.Error()}
		}
		if !allowed {
			return &PreconditionError{Check: check.name, Reason: "current credentials are not allowed to " + check.name}
		}
	}
	return nil
}

// ensurePrerequisites creates the namespace and operator group if absent and
// re-applies the subscription declaratively.
func (o *Orchestrator) ensurePrerequisites(ctx context.Context, _ *Result) error {
	operator := o.cfg.Operator

	created, err := o.ensurer.EnsureNamespace(ctx, operator.Namespace)
	if err != nil {
		return err
	}
	o.logEnsure("namespace "+operator.Namespace, created)

	created, err = o.ensurer.EnsureOperatorGroup(ctx, operator.Namespace, operator.OperatorGroup, nil)
	if err != nil {
		return err
	}
	o.logEnsure("operator group "+operator.OperatorGroup, created)

	if err := o.ensurer.ApplySubscription(ctx, operator); err != nil {
		return err
	}
	o.logger.WithFields(logrus.Fields{
		"package": operator.Package,
		"channel": operator.Channel,
		"catalog": operator.CatalogSource,
	}).Info("subscription applied")

	if o.cfg.Grants.CreateTargetNamespaces {
		createdNamespaces, err := o.ensurer.EnsureTargetNamespaces(ctx, o.cfg.Grants.TargetNamespaces)
		if err != nil {
			return err
		}
		for _, name := range createdNamespaces {
			o.logger.Infof("created target namespace %s", name)
		}
	}
	return nil
}

func (o *Orchestrator) waitForOperator(ctx context.Context, result *Result) error {
	operator := o.cfg.Operator
	status, err := o.installer.WaitForSucceeded(ctx, operator.Namespace, operator.Package, operator.MinVersion,
		o.timeouts.PollInterval, o.timeouts.CSVInstall)
	result.Install = status
	if err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{
		"csv":     status.CSVName,
		"version": status.Version.String(),
	}).Info("operator installed")
	return nil
}

func (o *Orchestrator) waitForController(ctx context.Context, _ *Result) error {
	namespace := o.cfg.Operator.ControllerNamespace

	if err := o.client.WaitForNamespace(ctx, namespace, o.timeouts.PollInterval, o.timeouts.Namespace); err != nil {
		return err
	}
	o.logger.Infof("controller namespace %s present", namespace)

	if err := o.client.WaitForPodsReady(ctx, namespace, o.timeouts.PollInterval, o.timeouts.PodsReady); err != nil {
		return err
	}
	o.logger.Infof("controller pods in %s ready", namespace)
	return nil
}

func (o *Orchestrator) resolveIdentities(ctx context.Context, result *Result) error {
	identity := o.cfg.Identity
	namespace := o.cfg.Operator.ControllerNamespace

	resolved, err := o.resolver.Resolve(ctx, namespace, identity.Candidates, identity.AllowMissingPrimary,
		o.timeouts.PollInterval, o.timeouts.Identity)
	if err != nil {
		return err
	}
	result.Identities = resolved

	if resolved[0].Name != identity.Candidates[0] {
		o.logger.Warnf("primary identity %s absent; continuing with legacy aliases", identity.Candidates[0])
	}
	for _, id := range resolved {
		o.logger.WithField("identity", id.String()).Info("resolved reconciliation identity")
	}
	return nil
}

func (o *Orchestrator) grantPrivileges(ctx context.Context, result *Result) error {
	grants := o.planGrants(result.Identities)
	result.Grants = grants

	for _, grant := range grants {
		var changed bool
		var err error
		if grant.Scope() == ClusterScope {
			changed, err = o.grantor.EnsureClusterRoleBinding(ctx, grant.Identity, grant.Role)
		} else {
			changed, err = o.grantor.EnsureRoleBinding(ctx, grant.Identity, grant.Role, grant.Namespace)
		}
		if err != nil {
			return err
		}

		grantLogger := o.logger.WithFields(logrus.Fields{
			"identity": grant.Identity.String(),
			"role":     grant.Role,
			"scope":    grant.Scope(),
		})
		if changed {
			grantLogger.Info("granted")
		} else {
			grantLogger.Info("grant already in place")
		}
	}
	return nil
}

// planGrants expands the configuration into concrete grants for every
// resolved identity, primary first.
func (o *Orchestrator) planGrants(identities []Identity) []Grant {
	var grants []Grant
	for _, identity := range identities {
		if o.cfg.Grants.ClusterRole != "" {
			grants = append(grants, Grant{Identity: identity, Role: o.cfg.Grants.ClusterRole})
		}
		if o.cfg.Grants.NamespaceRole != "" {
			for _, namespace := range o.cfg.Grants.TargetNamespaces {
				grants = append(grants, Grant{Identity: identity, Role: o.cfg.Grants.NamespaceRole, Namespace: namespace})
			}
		}
	}
	return grants
}

func (o *Orchestrator) verify(ctx context.Context, result *Result) error {
	report := o.verifier.Verify(ctx, result.Identities, result.Grants)
	result.Report = report
	o.recorder.ObserveChecks(report.Passed(), report.Failed(), report.Warnings())

	for _, check := range report.Results {
		checkLogger := o.logger.WithField("check", check.Name)
		switch check.Status {
		case CheckFailed:
			checkLogger.Warnf("verification mismatch: %s", check.Detail)
		case CheckWarning:
			checkLogger.Warnf("verification inconclusive: %s", check.Detail)
		default:
			checkLogger.Debug(check.Detail)
		}
	}

	// Mismatches are reported, never acted on.
	return nil
}

func (o *Orchestrator) logEnsure(what string, created bool) {
	if created {
		o.logger.Infof("created %s", what)
	} else {
		o.logger.Infof("%s already present", what)
	}
}
