package config

import (
	"os"
	"strings"
)

// ApplyEnv overlays FINSIGHT_* environment variables onto the config.
// Environment values win over file values; unset variables change nothing.
//
// Environment Variables:
//   - FINSIGHT_CLUSTER_NAME
//   - FINSIGHT_OPERATOR_NAMESPACE
//   - FINSIGHT_CONTROLLER_NAMESPACE
//   - FINSIGHT_CATALOG_SOURCE
//   - FINSIGHT_CATALOG_NAMESPACE
//   - FINSIGHT_PACKAGE
//   - FINSIGHT_CHANNEL
//   - FINSIGHT_TARGET_NAMESPACES (comma-separated)
func ApplyEnv(cfg *Config) {
	overlayString(&cfg.ClusterName, "FINSIGHT_CLUSTER_NAME")
	overlayString(&cfg.Operator.Namespace, "FINSIGHT_OPERATOR_NAMESPACE")
	overlayString(&cfg.Operator.ControllerNamespace, "FINSIGHT_CONTROLLER_NAMESPACE")
	overlayString(&cfg.Operator.CatalogSource, "FINSIGHT_CATALOG_SOURCE")
	overlayString(&cfg.Operator.CatalogNamespace, "FINSIGHT_CATALOG_NAMESPACE")
	overlayString(&cfg.Operator.Package, "FINSIGHT_PACKAGE")
	overlayString(&cfg.Operator.Channel, "FINSIGHT_CHANNEL")

	if val := os.Getenv("FINSIGHT_TARGET_NAMESPACES"); val != "" {
		var namespaces []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				namespaces = append(namespaces, part)
			}
		}
		if len(namespaces) > 0 {
			cfg.Grants.TargetNamespaces = namespaces
		}
	}
}

// overlayString replaces the target with the environment value when set.
func overlayString(target *string, envVar string) {
	if val := os.Getenv(envVar); val != "" {
		*target = val
	}
}
