package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerifyTotal counts /verify outcomes per chain
	VerifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_verify_total",
			Help: "Total number of payment verifications by result",
		},
		[]string{"chain", "result"},
	)

	// RPCErrorsTotal tracks RPC errors per chain and method
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"chain", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paygate_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "method"},
	)

	// WatcherTicksTotal counts revenue watcher ticks by outcome
	WatcherTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_watcher_ticks_total",
			Help: "Total number of revenue watcher ticks",
		},
		[]string{"chain", "outcome"},
	)

	// WatcherCursorBlock tracks the last block scanned per chain
	WatcherCursorBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paygate_watcher_cursor_block",
			Help: "Last block height scanned by the revenue watcher",
		},
		[]string{"chain"},
	)

	// RevenueRecordsTotal counts qualifying transfers observed by the watcher
	RevenueRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_revenue_records_total",
			Help: "Total number of revenue records observed",
		},
		[]string{"chain"},
	)

	// RevenueWriteErrorsTotal counts swallowed sink failures
	RevenueWriteErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygate_revenue_write_errors_total",
			Help: "Total number of failed revenue sink writes",
		},
		[]string{"sink"},
	)
)
