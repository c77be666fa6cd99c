package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics — счётчики конвейера анализа. Регистратор передаётся снаружи,
// чтобы тесты могли поднимать независимые реестры.
type Metrics struct {
	Analyses       prometheus.Counter
	Sprays         prometheus.Counter
	Skips          prometheus.Counter
	LocalFallbacks prometheus.Counter
	RemoteFailures prometheus.Counter
	NotifyFailures prometheus.Counter
}

// NewMetrics создаёт и регистрирует счётчики.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_analyses_total",
			Help: "Total leaf images analyzed and recorded.",
		}),
		Sprays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_spray_decisions_total",
			Help: "Analyses that ended with a spray verdict.",
		}),
		Skips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_skip_decisions_total",
			Help: "Analyses that ended with a skip verdict.",
		}),
		LocalFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_local_fallbacks_total",
			Help: "Classifications served by the local heuristic.",
		}),
		RemoteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_remote_failures_total",
			Help: "Remote classifier calls that failed.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprayer_notify_failures_total",
			Help: "Sprayer notifications that failed and were ignored.",
		}),
	}

	reg.MustRegister(
		m.Analyses,
		m.Sprays,
		m.Skips,
		m.LocalFallbacks,
		m.RemoteFailures,
		m.NotifyFailures,
	)

	return m
}
