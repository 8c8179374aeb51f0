// Package stats collects session-lifetime counters for a running server
// instance and exposes them both as Prometheus metrics and as an in-memory
// snapshot for diagnostics.
package stats

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Boot reasons tracked separately so an operator can tell a full server
// apart from an anti-cheat rejection at a glance.
const (
	BootReasonServerFull = "server_full"
	BootReasonChecksum   = "checksum_failure"
	BootReasonAntiCheat  = "anti_cheat"
)

// playerHistorySize bounds the ring buffer of recently-seen players kept
// for post-mortem debugging.
const playerHistorySize = 32

// PlayerRecord is one entry in the bounded connection history.
type PlayerRecord struct {
	Name        string
	Addr        string
	ConnectedAt int64
	DisconnectedAt int64
}

// Registry owns every Prometheus collector plus the non-metric diagnostic
// state (player history) for one server process. Mirrors the ptp4u
// exporter's pattern of a private *prometheus.Registry wrapped in a typed
// struct with explicit Record*/Set* methods rather than exposing raw
// collectors to callers.
type Registry struct {
	reg *prometheus.Registry

	connections    prometheus.Counter
	disconnects    prometheus.Counter
	timeouts       prometheus.Counter
	boots          *prometheus.CounterVec
	queries        *prometheus.CounterVec
	retransmits    prometheus.Counter
	opcodeOutcomes *prometheus.CounterVec
	concurrency    prometheus.Gauge
	peakConcurrency prometheus.Gauge

	mu      sync.Mutex
	history []PlayerRecord
	peak    int
}

// NewRegistry builds a fresh Registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.connections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bcserver_connections_total",
		Help: "Total accepted peer connections.",
	})
	r.disconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bcserver_disconnects_total",
		Help: "Total graceful peer disconnects.",
	})
	r.timeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bcserver_timeouts_total",
		Help: "Total peers dropped for exceeding the retransmit retry limit.",
	})
	r.boots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bcserver_boots_total",
		Help: "Total forced disconnects, by reason.",
	}, []string{"reason"})
	r.queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bcserver_discovery_queries_total",
		Help: "Total GameSpy discovery queries answered, by kind.",
	}, []string{"kind"})
	r.retransmits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bcserver_retransmits_total",
		Help: "Total reliable-message retransmissions sent.",
	})
	r.opcodeOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bcserver_opcode_outcomes_total",
		Help: "Total dispatched opcodes, by opcode and outcome.",
	}, []string{"opcode", "outcome"})
	r.concurrency = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bcserver_connected_peers",
		Help: "Currently connected peers.",
	})
	r.peakConcurrency = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bcserver_peak_connected_peers",
		Help: "Highest concurrent peer count observed this session.",
	})

	r.reg.MustRegister(r.connections, r.disconnects, r.timeouts, r.boots,
		r.queries, r.retransmits, r.opcodeOutcomes, r.concurrency, r.peakConcurrency)

	return r
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordConnect records a new accepted connection and updates the
// recent-player history ring.
func (r *Registry) RecordConnect(name, addr string, nowMS int64) {
	r.connections.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	rec := PlayerRecord{Name: name, Addr: addr, ConnectedAt: nowMS}
	if len(r.history) < playerHistorySize {
		r.history = append(r.history, rec)
	} else {
		copy(r.history, r.history[1:])
		r.history[len(r.history)-1] = rec
	}
}

// RecordDisconnect records a graceful disconnect and stamps the matching
// history entry (most recent undisconnected record for addr) if present.
func (r *Registry) RecordDisconnect(addr string, nowMS int64) {
	r.disconnects.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Addr == addr && r.history[i].DisconnectedAt == 0 {
			r.history[i].DisconnectedAt = nowMS
			break
		}
	}
}

// RecordTimeout records a peer dropped after exhausting retransmit retries.
func (r *Registry) RecordTimeout() { r.timeouts.Inc() }

// RecordBoot records a forced disconnect by reason.
func (r *Registry) RecordBoot(reason string) { r.boots.WithLabelValues(reason).Inc() }

// RecordQuery records a discovery-plane query of the given kind ("basic" or
// "status").
func (r *Registry) RecordQuery(kind string) { r.queries.WithLabelValues(kind).Inc() }

// RecordRetransmit records a single reliable-message resend.
func (r *Registry) RecordRetransmit() { r.retransmits.Inc() }

// RecordOpcode records a dispatch outcome ("accepted" or "rejected") for
// the given opcode.
func (r *Registry) RecordOpcode(opcode uint8, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.opcodeOutcomes.WithLabelValues(opcodeLabel(opcode), outcome).Inc()
}

func opcodeLabel(opcode uint8) string {
	return "0x" + strconv.FormatUint(uint64(opcode), 16)
}

// SetConcurrency updates the live peer-count gauge and, if n exceeds the
// session peak, the peak gauge too.
func (r *Registry) SetConcurrency(n int) {
	r.concurrency.Set(float64(n))

	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.peak {
		r.peak = n
		r.peakConcurrency.Set(float64(n))
	}
}

// History returns a snapshot of the bounded recent-player ring.
func (r *Registry) History() []PlayerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlayerRecord, len(r.history))
	copy(out, r.history)
	return out
}

// Summary formats a one-line human-readable session summary, in the style
// of a shutdown log line.
func (r *Registry) Summary() string {
	r.mu.Lock()
	peak := r.peak
	r.mu.Unlock()
	return fmt.Sprintf("peak_concurrency=%d history_entries=%d", peak, len(r.History()))
}
