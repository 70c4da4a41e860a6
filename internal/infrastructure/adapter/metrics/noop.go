package metrics

import (
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
)

// NoopMetrics discards all recordings. Useful in tests and tooling.
type NoopMetrics struct{}

// NewNoopMetrics creates a metrics recorder that does nothing
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (m *NoopMetrics) RecordPushInitiated()                                            {}
func (m *NoopMetrics) RecordReportReceived(trigger coreport.ReconcileTrigger)          {}
func (m *NoopMetrics) RecordReconcileOutcome(status string, t coreport.ReconcileTrigger) {}
func (m *NoopMetrics) RecordRecoveryInsert()                                           {}
func (m *NoopMetrics) RecordReportDiscarded()                                          {}
func (m *NoopMetrics) RecordOrderMarkedPaid()                                          {}
func (m *NoopMetrics) RecordReceiptEmitFailure()                                       {}

var _ coreport.MetricsRecorder = (*NoopMetrics)(nil)
