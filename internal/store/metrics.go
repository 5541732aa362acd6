package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_slot_loads_total",
			Help: "Collection rehydrations by outcome (ok, empty, unreadable, undecodable, unresolved)",
		},
		[]string{"collection", "result"},
	)

	slotWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_slot_writes_total",
			Help: "Collection persistence writes by outcome (ok, error)",
		},
		[]string{"collection", "result"},
	)
)
