// Package gitops implements the bootstrap flow for the FinSight GitOps
// controller: installing the operator through OLM, waiting for it to
// converge, resolving the reconciliation identity, granting it privileges,
// and verifying the result.
package gitops

import (
	"errors"
	"fmt"
)

// ErrPrimaryIdentityMissing reports that no usable reconciliation identity
// exists. Bootstrap cannot proceed without one.
var ErrPrimaryIdentityMissing = errors.New("primary reconciliation identity not found")

// PreconditionError reports an environment that cannot support the bootstrap
// flow, detected before any resource is written.
type PreconditionError struct {
	Check  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s: %s", e.Check, e.Reason)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var preconditionErr *PreconditionError
	return errors.As(err, &preconditionErr)
}

// GrantError reports a role binding that could not be ensured for an
// identity. Grants are the point of the whole flow, so these are fatal.
type GrantError struct {
	Identity Identity
	Role     string
	Scope    string // "cluster" or the namespace the binding lives in
	Err      error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("failed to grant %s to %s (scope %s): %v", e.Role, e.Identity.User(), e.Scope, e.Err)
}

func (e *GrantError) Unwrap() error {
	return e.Err
}

// IsGrantFailure reports whether err is (or wraps) a GrantError.
func IsGrantFailure(err error) bool {
	var grantErr *GrantError
	return errors.As(err, &grantErr)
}
