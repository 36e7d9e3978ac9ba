package orchestrator

import (
	"context"
	"time"

	"github.com/kbukum/deliverykit/session"
)

// Transport posts a JSON body and returns the status and body of the
// response. err is reserved for failures where no response was received.
// *httpclient.Client implements it.
type Transport interface {
	Send(ctx context.Context, url string, body []byte, timeout time.Duration) (int, []byte, error)
}

// Host receives everything the orchestrator publishes besides results.
type Host interface {
	// DispatchTelemetry forwards an analytics payload derived from a response.
	DispatchTelemetry(ctx context.Context, payload map[string]string)
	// PublishState shares the identity and session fields after they changed.
	PublishState(ctx context.Context, snap session.Snapshot)
}

// PreviewGate reports whether preview mode blocks delivery requests.
type PreviewGate interface {
	// PreviewActive returns true, with an optional message, while blocking.
	PreviewActive(ctx context.Context) (bool, string)
}

type nopHost struct{}

func (nopHost) DispatchTelemetry(context.Context, map[string]string) {}
func (nopHost) PublishState(context.Context, session.Snapshot)       {}
