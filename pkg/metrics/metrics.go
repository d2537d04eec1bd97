// Package metrics exposes the kubesecrets Prometheus counters through the
// controller-runtime metrics registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Result label values.
const (
	ResultApplied = "applied"
	ResultDryRun  = "dry_run"
	ResultCreated = "created"
	ResultExists  = "exists"
	ResultError   = "error"
)

var (
	// PropagatedSecrets counts propagation writes grouped by result.
	PropagatedSecrets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kubesecrets_propagated_secrets_total",
		Help: "Total count of secrets propagated to target namespaces, grouped by result",
	}, []string{"result"})

	// RenderedSecrets counts SecretTemplate renders grouped by result.
	RenderedSecrets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kubesecrets_rendered_secrets_total",
		Help: "Total count of secrets rendered from SecretTemplates, grouped by result",
	}, []string{"result"})

	// RegeneratedSecrets counts generated secrets whose finalizer was stripped for regeneration.
	RegeneratedSecrets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kubesecrets_regenerated_secrets_total",
		Help: "Total count of generated secrets released for regeneration",
	})
)

func init() {
	crmetrics.Registry.MustRegister(PropagatedSecrets, RenderedSecrets, RegeneratedSecrets)
}

// RecordPropagation increments the propagation counter for result.
func RecordPropagation(result string) {
	PropagatedSecrets.WithLabelValues(result).Inc()
}

// RecordRender increments the render counter for result.
func RecordRender(result string) {
	RenderedSecrets.WithLabelValues(result).Inc()
}

// RecordRegeneration increments the regeneration counter.
func RecordRegeneration() {
	RegeneratedSecrets.Inc()
}
