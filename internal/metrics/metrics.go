package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_searches_total",
		Help: "Completed flight searches by result source.",
	}, []string{"source"})

	UpstreamFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_upstream_failures_total",
		Help: "Flight API queries that failed.",
	})

	Handoffs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_booking_handoffs_total",
		Help: "Booking hand-offs by outcome.",
	}, []string{"outcome"})
)
