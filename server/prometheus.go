package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusWSConnTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_total",
	Help: "Total number of opened websocket connections",
})

var prometheusWSConnActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_conn_active",
	Help: "Total number of active websocket connections",
})

var prometheusWSConnErrTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_err_total",
	Help: "Total number of errored out websocket connections",
})

var prometheusWSConnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "ws_conn_duration_seconds",
	Help: "Duration of websocket connections",
})

var prometheusRelayJoinTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_join_total",
	Help: "Total number of successful room joins",
})

var prometheusRelayForwardTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_forward_total",
	Help: "Total number of signaling messages forwarded to room members",
})

var prometheusRelayForwardErrTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_forward_err_total",
	Help: "Total number of per-member forwarding failures that were skipped",
})

var prometheusRelayProtocolErrTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_protocol_err_total",
	Help: "Total number of protocol errors reported to clients",
})
