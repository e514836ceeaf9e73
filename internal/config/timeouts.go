package config

import (
	"os"
	"time"
)

// Timeouts holds the bounded-wait budgets for the bootstrap flow.
// These values can be customized via environment variables.
type Timeouts struct {
	CSVInstall   time.Duration // Waiting for the install plan to reach phase Succeeded
	Namespace    time.Duration // Waiting for the controller namespace to appear
	PodsReady    time.Duration // Waiting for the controller pods to become ready
	Identity     time.Duration // Waiting for the primary service account to materialize
	PollInterval time.Duration // Interval between poll ticks for all waits
	TokenTTL     time.Duration // Lifetime requested for verification tokens
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - FINSIGHT_TIMEOUT_CSV_INSTALL (default: 5m)
//   - FINSIGHT_TIMEOUT_NAMESPACE (default: 2m)
//   - FINSIGHT_TIMEOUT_PODS_READY (default: 5m)
//   - FINSIGHT_TIMEOUT_IDENTITY (default: 2m)
//   - FINSIGHT_POLL_INTERVAL (default: 5s)
//   - FINSIGHT_TOKEN_TTL (default: 10m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		CSVInstall:   parseDuration("FINSIGHT_TIMEOUT_CSV_INSTALL", 5*time.Minute),
		Namespace:    parseDuration("FINSIGHT_TIMEOUT_NAMESPACE", 2*time.Minute),
		PodsReady:    parseDuration("FINSIGHT_TIMEOUT_PODS_READY", 5*time.Minute),
		Identity:     parseDuration("FINSIGHT_TIMEOUT_IDENTITY", 2*time.Minute),
		PollInterval: parseDuration("FINSIGHT_POLL_INTERVAL", 5*time.Second),
		TokenTTL:     parseDuration("FINSIGHT_TOKEN_TTL", 10*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
