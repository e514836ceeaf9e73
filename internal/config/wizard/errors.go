package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errClusterNameRequired = errors.New("cluster name is required")
	errClusterNameInvalid  = errors.New("cluster name must be 1-32 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errNamespaceInvalid    = errors.New("namespaces must be lowercase RFC 1123 labels")
	errCandidateInvalid    = errors.New("service account names must be lowercase RFC 1123 labels")
	errEndpointRequired    = errors.New("endpoint is required")
	errEndpointInvalid     = errors.New("endpoint must be a valid http:// or https:// URL")
	errBucketRequired      = errors.New("bucket name is required")
	errBucketInvalid       = errors.New("bucket name must be 3-63 lowercase alphanumeric characters, dots or hyphens")
	errVersionInvalid      = errors.New("minimum version must be a semantic version like 1.8.0")
)
