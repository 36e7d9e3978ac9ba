package delivery

import (
	"context"
	stderrors "errors"

	apperrors "github.com/kbukum/deliverykit/errors"
	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/mboxcache"
	"github.com/kbukum/deliverykit/session"
)

var errNotObject = stderrors.New("delivery: response is not a JSON object")

// ProcessInput describes the request a response belongs to.
type ProcessInput struct {
	Prefetch  []Unit
	Execute   []Unit
	SessionID string
}

// Plan is the outcome of a response: the state changes to apply and the
// answers to hand back. A non-nil Err means nothing should be applied.
type Plan struct {
	Err        error
	Status     int
	TntID      string
	EdgeHost   string
	Prefetched map[string]jsonvalue.Value
	Loaded     map[string]jsonvalue.Value
	// Answers holds one entry per execute unit, in request order.
	Answers []Answer
	// Raw is the parsed response body.
	Raw jsonvalue.Value
}

// Telemetry returns the analytics payloads to dispatch, one per answer that
// carries one.
func (p Plan) Telemetry() []map[string]string {
	var out []map[string]string
	for _, a := range p.Answers {
		if len(a.Analytics) > 0 {
			out = append(out, a.Analytics)
		}
	}
	return out
}

// Process interprets a response. It has no side effects.
func Process(status int, body []byte, in ProcessInput) Plan {
	plan := Plan{Status: status}

	v, err := jsonvalue.Parse(body)
	if err != nil {
		if isSuccess(status) {
			plan.Err = apperrors.ParseFailure(err)
		} else {
			plan.Err = apperrors.ServerError("", status)
		}
		return plan
	}
	if !v.IsObject() {
		plan.Err = apperrors.ParseFailure(errNotObject)
		return plan
	}
	plan.Raw = v

	if msg := v.Get("message").StringOr(""); msg != "" {
		plan.Err = apperrors.ServerError(msg, status)
		return plan
	}
	if !isSuccess(status) {
		plan.Err = apperrors.ServerError("", status)
		return plan
	}

	plan.TntID = v.Path("id", "tntId").StringOr("")
	plan.EdgeHost = v.Get("edgeHost").StringOr("")
	plan.Prefetched = mboxesByName(v.Path("prefetch", "mboxes"))
	plan.Loaded = mboxesByName(v.Path("execute", "mboxes"))

	if len(in.Execute) > 0 {
		plan.Answers = make([]Answer, 0, len(in.Execute))
		for _, u := range in.Execute {
			plan.Answers = append(plan.Answers, AnswerFor(u, plan.Loaded[u.Name], in.SessionID))
		}
	}
	return plan
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Processor applies plans to the session state and the content cache.
type Processor struct {
	session *session.State
	cache   *mboxcache.Cache
	log     *logger.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(state *session.State, cache *mboxcache.Cache, log *logger.Logger) *Processor {
	return &Processor{session: state, cache: cache, log: logger.OrGlobal(log, "delivery")}
}

// Apply performs the changes of a successful plan and reports whether an
// identity or edge host field changed. Failed plans change nothing.
func (p *Processor) Apply(ctx context.Context, plan Plan) bool {
	if plan.Err != nil {
		return false
	}

	p.session.TouchSession(ctx, false)

	changed := false
	if plan.TntID != "" && p.session.SetTntID(ctx, plan.TntID) {
		changed = true
	}
	if plan.EdgeHost != "" && p.session.SetEdgeHost(ctx, plan.EdgeHost) {
		changed = true
	}

	p.cache.MergePrefetched(plan.Prefetched)
	p.cache.SaveLoaded(plan.Loaded)

	p.log.Debug("response applied", logger.Fields(
		"prefetched", len(plan.Prefetched),
		"loaded", len(plan.Loaded),
		"identity_changed", changed,
	))
	return changed
}
