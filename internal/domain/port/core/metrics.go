package core

// ReconcileTrigger labels which delivery path produced a result report
type ReconcileTrigger string

// Trigger values
const (
	TriggerCallback ReconcileTrigger = "callback"
	TriggerPoll     ReconcileTrigger = "poll"
)

// MetricsRecorder abstracts the payment metrics the domain emits. The
// infrastructure layer backs it with Prometheus; tests use a mock.
type MetricsRecorder interface {
	// RecordPushInitiated counts a submitted STK Push
	RecordPushInitiated()
	// RecordReportReceived counts an inbound result report by trigger
	RecordReportReceived(trigger ReconcileTrigger)
	// RecordReconcileOutcome counts a reconciliation by resulting status and trigger
	RecordReconcileOutcome(status string, trigger ReconcileTrigger)
	// RecordRecoveryInsert counts a transaction created directly in a
	// terminal state because no initiation record was found. Frequent
	// occurrence is an alerting signal, not normal operation.
	RecordRecoveryInsert()
	// RecordReportDiscarded counts an unmatched, non-successful report dropped
	RecordReportDiscarded()
	// RecordOrderMarkedPaid counts an order transitioned to paid
	RecordOrderMarkedPaid()
	// RecordReceiptEmitFailure counts a failed receipt emission
	RecordReceiptEmitFailure()
}
