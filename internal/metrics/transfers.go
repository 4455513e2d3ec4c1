package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(transfersTotal, formSubmissionsTotal) }

var (
	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Outcomes of /pay invocations.",
		},
		[]string{"outcome"}, // e.g. confirmed, submitted, insufficient_funds
	)

	formSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Form POSTs by result type.",
		},
		[]string{"result"},
	)
)

func IncTransfer(outcome string) {
	transfersTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncFormSubmission(result string) {
	formSubmissionsTotal.WithLabelValues(norm(result)).Inc()
}
