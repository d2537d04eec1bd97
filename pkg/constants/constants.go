// Package constants defines all annotation keys, label keys, and constant values
// used by the kubesecrets controllers.
//
// # Labels vs Annotations
//
// The enabled marker is a label so the controllers can watch and list only the
// secrets and namespaces that opted in (server-side label filtering). Glob rules
// and provenance data are annotations: they are configuration, can be long, and
// are never used for filtering.
//
// Every key below shares the Prefix. Any key under that prefix is operator-owned
// and is stripped from metadata copied to propagated secrets.
package constants

import "time"

const (
	// Domain is the base domain for all secret-sync labels and annotations.
	Domain = "dev.withlazers.operator.secret-sync-operator"

	// Prefix is the reserved key prefix owned by the operator.
	Prefix = Domain + "/"

	// ====================
	// LABELS
	// ====================

	// LabelEnabled opts a secret (as a source) or a namespace (as a target) into propagation.
	// Only presence matters, the value is ignored.
	LabelEnabled = Prefix + "enabled"

	// ====================
	// ANNOTATIONS
	// ====================

	// AnnotationClonedFrom is set on every propagated copy and names the source namespace.
	// Objects carrying it are propagation output and never act as sources.
	AnnotationClonedFrom = Prefix + "cloned_from_namespace"

	// AnnotationNamespaces holds the space-separated allow-list of namespace globs.
	AnnotationNamespaces = Prefix + "namespace"

	// AnnotationNamespacesDeny holds the space-separated deny-list of namespace globs.
	// A deny match always wins over an allow match.
	AnnotationNamespacesDeny = Prefix + "namespace_deny"

	// Finalizers

	// FinalizerName guards secrets generated from a SecretTemplate so that deleting
	// one regenerates it instead of removing it.
	FinalizerName = "secret-template-operator.withlazers.dev/finalizer"

	// Controller Configuration

	// ControllerName is the name of the operator binary.
	ControllerName = "kubesecrets"

	// FieldManager is the server-side apply field manager used for propagated secrets.
	FieldManager = "secret-sync-operator"

	// LeaderElectionID is the name of the leader election lease.
	LeaderElectionID = "kubesecrets-controller-leader"

	// SecretSyncControllerName names the controller watching source secrets.
	SecretSyncControllerName = "secret-sync"

	// NamespaceSyncControllerName names the controller watching target namespaces.
	NamespaceSyncControllerName = "namespace-sync"

	// SecretTemplateControllerName names the controller rendering SecretTemplates.
	SecretTemplateControllerName = "secret-template"

	// GeneratedSecretControllerName names the controller running the finalizer protocol.
	GeneratedSecretControllerName = "generated-secret"

	// DefaultRetryInterval is the fixed backoff applied to failed reconciliations.
	DefaultRetryInterval = 5 * time.Second
)

// Default System Namespaces (excluded by default)
var (
	DefaultExcludedNamespaces = []string{
		"kube-system",
		"kube-public",
		"kube-node-lease",
	}

	// Blacklisted Secret Types (never propagated)
	BlacklistedSecretTypes = []string{
		"kubernetes.io/service-account-token",
		"bootstrap.kubernetes.io/token",
		"helm.sh/release.v1",
	}
)
