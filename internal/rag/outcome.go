package rag

import "log/slog"

// Status tells how an external call produced its result.
type Status string

const (
	// StatusOK means the primary path succeeded.
	StatusOK Status = "ok"
	// StatusDegraded means a fallback path produced a usable result.
	StatusDegraded Status = "degraded"
	// StatusFailed means no usable result was produced.
	StatusFailed Status = "failed"
)

// Outcome records how one stage of the query path went. Degraded and Failed
// outcomes carry the reason and the underlying error.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

// OK returns a successful outcome.
func OK() Outcome {
	return Outcome{Status: StatusOK}
}

// Degraded returns an outcome for a result produced by a fallback path.
func Degraded(reason string, err error) Outcome {
	return Outcome{Status: StatusDegraded, Reason: reason, Err: err}
}

// Failed returns an outcome for a stage that produced nothing usable.
func Failed(reason string, err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, Err: err}
}

// LogValue implements slog.LogValuer.
func (o Outcome) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("status", string(o.Status))}
	if o.Reason != "" {
		attrs = append(attrs, slog.String("reason", o.Reason))
	}
	if o.Err != nil {
		attrs = append(attrs, slog.String("error", o.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}
