// Copyright (C) 2018. See AUTHORS.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	advancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfsr_advances_total",
		Help: "Number of register advances performed for stored generators",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lfsr_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})

	checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lfsr_check_duration_seconds",
		Help:    "Time to run the period self-test",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	})

	checkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfsr_check_failures_total",
		Help: "Self-test runs that measured an incorrect period",
	})
)
