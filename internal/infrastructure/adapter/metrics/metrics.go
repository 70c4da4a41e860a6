package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
)

// PaymentMetrics collects Prometheus counters for the payment pipeline.
// It implements core.MetricsRecorder.
type PaymentMetrics struct {
	PushesInitiatedTotal  prometheus.Counter
	ReportsReceivedTotal  *prometheus.CounterVec
	ReconcileOutcomeTotal *prometheus.CounterVec
	RecoveryInsertsTotal  prometheus.Counter
	ReportsDiscardedTotal prometheus.Counter
	OrdersMarkedPaidTotal prometheus.Counter
	ReceiptFailuresTotal  prometheus.Counter
}

// NewPaymentMetrics registers the payment counters on the default registry
func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PushesInitiatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stk_pushes_initiated_total",
				Help: "Total number of STK push requests accepted by the gateway",
			},
		),

		ReportsReceivedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_reports_received_total",
				Help: "Total number of provider result reports received",
			},
			[]string{"trigger"},
		),

		ReconcileOutcomeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_reconcile_outcomes_total",
				Help: "Total number of reconciled reports by resulting status",
			},
			[]string{"status", "trigger"},
		),

		RecoveryInsertsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_recovery_inserts_total",
				Help: "Total number of completed payments recorded without a matching pending transaction",
			},
		),

		ReportsDiscardedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payment_reports_discarded_total",
				Help: "Total number of unmatched non-success reports dropped",
			},
		),

		OrdersMarkedPaidTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_marked_paid_total",
				Help: "Total number of orders flipped to paid after a completed payment",
			},
		),

		ReceiptFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "receipt_emit_failures_total",
				Help: "Total number of receipt emissions that failed",
			},
		),
	}
}

// RecordPushInitiated counts an accepted STK push
func (m *PaymentMetrics) RecordPushInitiated() {
	m.PushesInitiatedTotal.Inc()
}

// RecordReportReceived counts an incoming provider report
func (m *PaymentMetrics) RecordReportReceived(trigger coreport.ReconcileTrigger) {
	m.ReportsReceivedTotal.WithLabelValues(string(trigger)).Inc()
}

// RecordReconcileOutcome counts a reconciled report by resulting status
func (m *PaymentMetrics) RecordReconcileOutcome(status string, trigger coreport.ReconcileTrigger) {
	m.ReconcileOutcomeTotal.WithLabelValues(status, string(trigger)).Inc()
}

// RecordRecoveryInsert counts a recovery insert, the alerting signal for
// payments taken without a stored pending transaction
func (m *PaymentMetrics) RecordRecoveryInsert() {
	m.RecoveryInsertsTotal.Inc()
}

// RecordReportDiscarded counts a dropped unmatched report
func (m *PaymentMetrics) RecordReportDiscarded() {
	m.ReportsDiscardedTotal.Inc()
}

// RecordOrderMarkedPaid counts an order flipped to paid
func (m *PaymentMetrics) RecordOrderMarkedPaid() {
	m.OrdersMarkedPaidTotal.Inc()
}

// RecordReceiptEmitFailure counts a failed receipt emission
func (m *PaymentMetrics) RecordReceiptEmitFailure() {
	m.ReceiptFailuresTotal.Inc()
}

var _ coreport.MetricsRecorder = (*PaymentMetrics)(nil)
