package orchestrator

import (
	"github.com/kbukum/deliverykit/delivery"
	apperrors "github.com/kbukum/deliverykit/errors"
	"github.com/kbukum/deliverykit/jsonvalue"
)

// Intent identifies the kind of call being run.
type Intent string

const (
	IntentPrefetch      Intent = "prefetch"
	IntentLoad          Intent = "load"
	IntentDisplayNotify Intent = "display"
	IntentClickNotify   Intent = "click"
	IntentRawExecute    Intent = "raw_execute"
	IntentRawNotify     Intent = "raw_notify"
)

func (i Intent) String() string { return string(i) }

// raw intents skip the preview gate and leave cache and queue alone.
func (i Intent) raw() bool {
	return i == IntentRawExecute || i == IntentRawNotify
}

// Outcome statuses recorded on spans and metrics.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailure = "failure"
)

// Result is the single completion event of a call.
type Result struct {
	Intent Intent
	// Err is nil on success, otherwise usually an *errors.AppError.
	Err error
	// Answers has one entry per requested load unit, in request order.
	Answers []delivery.Answer
	// Raw is the parsed response body of raw execute calls.
	Raw jsonvalue.Value
	// Status is the HTTP status, zero when no request was sent.
	Status int
	// Sent reports whether a network request was issued.
	Sent bool
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message returns the error message, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	if appErr, ok := apperrors.AsAppError(r.Err); ok {
		return appErr.Message
	}
	return r.Err.Error()
}

func (r Result) status() string {
	switch {
	case r.Err != nil:
		return StatusFailure
	case !r.Sent:
		return StatusSkipped
	default:
		return StatusSuccess
	}
}
