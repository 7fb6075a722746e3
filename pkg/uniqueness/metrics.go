package uniqueness

import "github.com/prometheus/client_golang/prometheus"

var (
	commitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Total number of successful uniqueness commits",
			Name:      "uniqueness_commits_total",
			Namespace: "ledgernotary",
		},
	)
	conflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Total number of uniqueness conflicts rejected",
			Name:      "uniqueness_conflicts_total",
			Namespace: "ledgernotary",
		},
	)
)

func init() {
	prometheus.MustRegister(commitsTotal, conflictsTotal)
}
