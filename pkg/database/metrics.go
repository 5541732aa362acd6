package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool statistics, labelled by the component
// owning the pool.
type PoolStatsCollector struct {
	pool      *pgxpool.Pool
	component string
	metrics   []poolMetric
}

// NewPoolStatsCollector creates a collector for pool. Stats are read on every
// scrape.
func NewPoolStatsCollector(pool *pgxpool.Pool, component string) *PoolStatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("db_pool_"+name, help, []string{"component"}, nil)
	}
	return &PoolStatsCollector{
		pool:      pool,
		component: component,
		metrics: []poolMetric{
			{desc("acquired_connections", "Connections currently checked out."), prometheus.GaugeValue,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
			{desc("idle_connections", "Connections currently idle."), prometheus.GaugeValue,
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
			{desc("total_connections", "Connections open in the pool."), prometheus.GaugeValue,
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
			{desc("max_connections", "Configured pool size."), prometheus.GaugeValue,
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
			{desc("acquire_count_total", "Successful connection acquires."), prometheus.CounterValue,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }},
			{desc("acquire_duration_seconds_total", "Time spent waiting for a connection."), prometheus.CounterValue,
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }},
			{desc("empty_acquire_count_total", "Acquires that had to wait for a free connection."), prometheus.CounterValue,
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }},
			{desc("canceled_acquire_count_total", "Acquires canceled by their context."), prometheus.CounterValue,
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }},
		},
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stat), c.component)
	}
}

// RegisterPoolMetrics registers a collector for pool with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool, component string) error {
	return reg.Register(NewPoolStatsCollector(pool, component))
}
