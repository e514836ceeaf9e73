// Package config defines the finsightctl configuration model.
//
// The [Config] struct is the canonical representation of a cluster's
// desired bootstrap state, including the operator subscription, the
// controller identities, the privileges granted to them, and the audio
// pipeline wiring. It is produced by [Default], by loading a YAML file,
// or by the interactive init wizard. Wait budgets are environmental and
// load separately via [LoadTimeouts].
package config
