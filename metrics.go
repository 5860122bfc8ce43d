package uds

/*
Optional Prometheus export for the server's counters, grounded on
runZeroInc-sockstats's pkg/exporter (which wraps OS socket counters as
Prometheus gauges/counters against a caller-supplied registerer) -- the
clearest example in the retrieved pack of wrapping a small counter struct
for scraping. Nil-safe throughout: a Server built without a
MetricsCollector never touches Prometheus.
*/

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector registers and updates the Prometheus series describing
// this server's activity. Construct with NewMetricsCollector and attach it
// via ServerConfig.Metrics.
type MetricsCollector struct {
	requestsTotal          *prometheus.CounterVec
	negativeResponsesTotal *prometheus.CounterVec
	sessionTimeoutsTotal   prometheus.Counter
	transferSessionsTotal  prometheus.Counter
}

// NewMetricsCollector creates and registers the collector's series against
// reg. Returns an error if registration fails (e.g. a duplicate
// registration against the same registerer).
func NewMetricsCollector(reg prometheus.Registerer) (*MetricsCollector, error) {
	m := &MetricsCollector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uds_requests_total",
			Help: "Total UDS requests dispatched, by service identifier.",
		}, []string{"sid"}),
		negativeResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uds_negative_responses_total",
			Help: "Total negative UDS responses produced, by NRC.",
		}, []string{"code"}),
		sessionTimeoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uds_session_timeouts_total",
			Help: "Total S3 session timeouts observed.",
		}),
		transferSessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uds_transfer_sessions_total",
			Help: "Total 0x34 RequestDownload transfer sessions opened.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requestsTotal, m.negativeResponsesTotal, m.sessionTimeoutsTotal, m.transferSessionsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("uds: registering metrics: %w", err)
		}
	}
	return m, nil
}

func (m *MetricsCollector) observeRequest(sid byte, code ResponseCode) {
	m.requestsTotal.WithLabelValues(fmt.Sprintf("0x%02x", sid)).Inc()
	if code != kPositiveResponse {
		m.negativeResponsesTotal.WithLabelValues(fmt.Sprintf("0x%02x", byte(code))).Inc()
	}
}

func (m *MetricsCollector) observeSessionTimeout() {
	m.sessionTimeoutsTotal.Inc()
}

func (m *MetricsCollector) observeTransferSessionOpened() {
	m.transferSessionsTotal.Inc()
}
