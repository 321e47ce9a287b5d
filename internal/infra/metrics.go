package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide collectors exposed on /metrics.
var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garage_scans_total",
		Help: "Ticket scans by resulting action (ENTRY, EXIT).",
	}, []string{"action"})

	BoxListIncrementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garage_box_list_increments_total",
		Help: "Box list total updates by source.",
	}, []string{"source"})

	InterestResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garage_interest_results_total",
		Help: "Interest accrual outcomes per customer.",
	}, []string{"status"})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garage_jobs_processed_total",
		Help: "Background jobs by queue and outcome.",
	}, []string{"queue", "outcome"})

	SMTPRelayState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "garage_smtp_relay_state",
		Help: "Receipt mail breaker state: 0 closed, 1 open, 2 half-open.",
	}, []string{"relay"})
)
