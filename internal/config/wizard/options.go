package wizard

import "github.com/charmbracelet/huh"

// Operator preset keys.
const (
	PresetOpenShiftGitOps = "openshift-gitops"
	PresetArgoCDCommunity = "argocd-operator"
)

// OperatorPreset bundles the marketplace coordinates of a supported
// GitOps operator together with the controller namespace and service
// accounts its installation materializes.
type OperatorPreset struct {
	Key                 string
	Label               string
	Description         string
	Package             string
	CatalogSource       string
	CatalogNamespace    string
	Channels            []string
	ControllerNamespace string
	Candidates          []string
}

// OperatorPresets contains the operators the wizard knows how to configure.
var OperatorPresets = []OperatorPreset{
	{
		Key:                 PresetOpenShiftGitOps,
		Label:               "OpenShift GitOps",
		Description:         "Red Hat's supported Argo CD distribution",
		Package:             "openshift-gitops-operator",
		CatalogSource:       "redhat-operators",
		CatalogNamespace:    "openshift-marketplace",
		Channels:            []string{"latest", "gitops-1.16", "gitops-1.15"},
		ControllerNamespace: "openshift-gitops",
		Candidates: []string{
			"openshift-gitops-argocd-application-controller",
			"argocd-cluster-argocd-application-controller",
		},
	},
	{
		Key:                 PresetArgoCDCommunity,
		Label:               "Argo CD (community)",
		Description:         "Community-maintained Argo CD operator",
		Package:             "argocd-operator",
		CatalogSource:       "community-operators",
		CatalogNamespace:    "openshift-marketplace",
		Channels:            []string{"alpha"},
		ControllerNamespace: "argocd",
		Candidates: []string{
			"argocd-argocd-application-controller",
		},
	},
}

// NamespaceRoleOptions contains the roles offered for namespace-scoped
// grants.
var NamespaceRoleOptions = []huh.Option[string]{
	huh.NewOption("admin - full control inside the namespace", "admin"),
	huh.NewOption("edit - modify workloads, no RBAC changes", "edit"),
	huh.NewOption("view - read only", "view"),
}

// PresetByKey returns the operator preset with the given key.
func PresetByKey(key string) (OperatorPreset, bool) {
	for _, preset := range OperatorPresets {
		if preset.Key == key {
			return preset, true
		}
	}
	return OperatorPreset{}, false
}

// OperatorsToOptions converts the operator presets to huh.Option slice.
func OperatorsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(OperatorPresets))
	for i, preset := range OperatorPresets {
		opts[i] = huh.NewOption(preset.Label+" - "+preset.Description, preset.Key)
	}
	return opts
}

// ChannelsToOptions converts a preset's update channels to huh.Option slice.
func ChannelsToOptions(preset OperatorPreset) []huh.Option[string] {
	opts := make([]huh.Option[string], len(preset.Channels))
	for i, channel := range preset.Channels {
		opts[i] = huh.NewOption(channel, channel)
	}
	return opts
}
