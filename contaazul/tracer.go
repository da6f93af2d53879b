package contaazul

import (
	"go-contaazul-api/logger"

	"github.com/sirupsen/logrus"
)

// Stage marks a boundary inside one logical provider call.
type Stage string

const (
	StageCallStarted      Stage = "call_started"
	StageCredentialLoaded Stage = "credential_loaded"
	StageRequestIssued    Stage = "request_issued"
	StageOutcome          Stage = "outcome"
	StageRefreshStarted   Stage = "refresh_started"
	StageRefreshResult    Stage = "refresh_result"
	StageCallFinished     Stage = "call_finished"
)

// Event is one structured diagnostic event. All events of a logical call
// share the same correlation id.
type Event struct {
	CorrelationID string
	CompanyID     int
	Stage         Stage
	Fields        map[string]any
}

// Tracer receives ordered events at each stage boundary. Implementations are
// observers only: a tracer must never alter the outcome of the call it
// watches, and panics from Emit are swallowed by the client.
type Tracer interface {
	Emit(Event)
}

// LogTracer writes events to the application logger.
type LogTracer struct{}

func (LogTracer) Emit(ev Event) {
	fields := logrus.Fields{
		"correlation_id": ev.CorrelationID,
		"company_id":     ev.CompanyID,
		"stage":          string(ev.Stage),
	}
	for k, v := range ev.Fields {
		fields[k] = v
	}
	logger.Log.WithFields(fields).Info("Conta Azul call event")
}

// NopTracer discards all events.
type NopTracer struct{}

func (NopTracer) Emit(Event) {}
