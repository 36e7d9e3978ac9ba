package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/deliverykit/delivery"
	apperrors "github.com/kbukum/deliverykit/errors"
	"github.com/kbukum/deliverykit/httpclient"
	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/notification"
	"github.com/kbukum/deliverykit/observability"
	"github.com/kbukum/deliverykit/params"
	"github.com/kbukum/deliverykit/session"
	"github.com/kbukum/deliverykit/util"
	"github.com/kbukum/deliverykit/validation"
)

// MaxUnitNameLength bounds content unit names; longer names are dropped.
const MaxUnitNameLength = 250

const endpointService = "delivery endpoint"

// RawRequest is a caller-assembled execute or prefetch request. Its
// response is returned as is and does not populate the content cache.
type RawRequest struct {
	Prefetch      []delivery.Unit
	Execute       []delivery.Unit
	Global        *params.Parameters
	PropertyToken string
}

// roundTrip is a request ready to send.
type roundTrip struct {
	intent        Intent
	url           string
	body          []byte
	timeout       time.Duration
	input         delivery.ProcessInput
	notifications int
	// answers holds cache hits and default content by request index;
	// missIndex maps execute units back to their slot.
	answers   []delivery.Answer
	missIndex []int
	// clickAnalytics is dispatched once a click notification is delivered.
	clickAnalytics map[string]string
}

// Prefetch requests units for later use and stores them in the
// prefetched tier.
func (o *Orchestrator) Prefetch(ctx context.Context, units []delivery.Unit, global *params.Parameters) <-chan Result {
	return o.run(ctx, IntentPrefetch, func(ctx context.Context) (*roundTrip, *Result) {
		if err := o.gateLocked(ctx, IntentPrefetch); err != nil {
			return nil, o.failLocked(ctx, IntentPrefetch, err)
		}
		units = o.validUnits(IntentPrefetch, units)
		if len(units) == 0 {
			return nil, &Result{}
		}
		return o.prepareLocked(ctx, IntentPrefetch, delivery.BuildInput{Prefetch: units, Global: global})
	})
}

// Load requests units for immediate use. Units already prefetched are
// answered from cache; the rest are fetched and stored in the loaded tier.
// A failed call still answers every unit: cache hits keep their content and
// the rest fall back to their default content.
func (o *Orchestrator) Load(ctx context.Context, units []delivery.Unit, global *params.Parameters) <-chan Result {
	return o.run(ctx, IntentLoad, func(ctx context.Context) (*roundTrip, *Result) {
		units = o.validUnits(IntentLoad, units)
		if err := o.gateLocked(ctx, IntentLoad); err != nil {
			res := o.failLocked(ctx, IntentLoad, err)
			res.Answers = make([]delivery.Answer, len(units))
			for i, u := range units {
				res.Answers[i] = delivery.AnswerFor(u, jsonvalue.Null(), "")
			}
			return nil, res
		}

		sessionID := o.state.CurrentSessionID(ctx)
		answers := make([]delivery.Answer, len(units))
		var (
			misses    []delivery.Unit
			missIndex []int
		)
		for i, u := range units {
			record, ok := o.cache.Prefetched(u.Name)
			if !ok {
				answers[i] = delivery.AnswerFor(u, jsonvalue.Null(), sessionID)
				misses = append(misses, u)
				missIndex = append(missIndex, i)
				continue
			}
			a := delivery.AnswerFor(u, record, sessionID)
			a.FromCache = true
			answers[i] = a
		}
		o.metrics.RecordCacheHits(ctx, len(units)-len(misses))

		if len(misses) == 0 && o.queue.IsEmpty() {
			return nil, &Result{Answers: answers}
		}
		rt, res := o.prepareLocked(ctx, IntentLoad, delivery.BuildInput{Execute: misses, Global: global})
		if rt == nil {
			res.Answers = answers
			return nil, res
		}
		rt.answers = answers
		rt.missIndex = missIndex
		return rt, nil
	})
}

// Display reports that cached units were shown. Units without a display
// token are skipped; when none is left no request is sent.
func (o *Orchestrator) Display(ctx context.Context, names []string, p *params.Parameters) <-chan Result {
	return o.run(ctx, IntentDisplayNotify, func(ctx context.Context) (*roundTrip, *Result) {
		if err := o.gateLocked(ctx, IntentDisplayNotify); err != nil {
			return nil, o.failLocked(ctx, IntentDisplayNotify, err)
		}
		queued := 0
		for _, name := range names {
			if o.queue.EnqueueDisplay(name, util.Deref(p)) {
				queued++
			}
		}
		if queued == 0 {
			return nil, &Result{}
		}
		return o.prepareLocked(ctx, IntentDisplayNotify, delivery.BuildInput{})
	})
}

// Click reports a click on a cached unit. Nothing is sent unless the unit
// carries a click metric.
func (o *Orchestrator) Click(ctx context.Context, name string, p *params.Parameters) <-chan Result {
	return o.run(ctx, IntentClickNotify, func(ctx context.Context) (*roundTrip, *Result) {
		if err := o.gateLocked(ctx, IntentClickNotify); err != nil {
			return nil, o.failLocked(ctx, IntentClickNotify, err)
		}
		if !o.queue.EnqueueClick(name, util.Deref(p)) {
			return nil, &Result{}
		}
		rt, res := o.prepareLocked(ctx, IntentClickNotify, delivery.BuildInput{})
		if rt != nil {
			record, _ := o.cache.Lookup(name)
			if metric, ok := notification.ClickMetric(record); ok {
				rt.clickAnalytics = delivery.ClickAnalyticsPayload(metric, rt.input.SessionID)
			}
		}
		return rt, res
	})
}

// RawExecute sends a caller-assembled request and returns the parsed
// response in Result.Raw. Preview mode does not block it.
func (o *Orchestrator) RawExecute(ctx context.Context, req RawRequest) <-chan Result {
	return o.run(ctx, IntentRawExecute, func(ctx context.Context) (*roundTrip, *Result) {
		if err := o.gateLocked(ctx, IntentRawExecute); err != nil {
			return nil, o.failLocked(ctx, IntentRawExecute, err)
		}
		in := delivery.BuildInput{
			Prefetch:      o.validUnits(IntentRawExecute, req.Prefetch),
			Execute:       o.validUnits(IntentRawExecute, req.Execute),
			Global:        req.Global,
			PropertyToken: req.PropertyToken,
		}
		if len(in.Prefetch) == 0 && len(in.Execute) == 0 {
			return nil, &Result{}
		}
		return o.prepareLocked(ctx, IntentRawExecute, in)
	})
}

// RawNotify sends caller-built notification records. Invalid records are
// dropped; missing ids and timestamps are filled in.
func (o *Orchestrator) RawNotify(ctx context.Context, records []notification.Record, propertyToken string) <-chan Result {
	return o.run(ctx, IntentRawNotify, func(ctx context.Context) (*roundTrip, *Result) {
		if err := o.gateLocked(ctx, IntentRawNotify); err != nil {
			return nil, o.failLocked(ctx, IntentRawNotify, err)
		}
		valid := o.validRecords(records)
		if len(valid) == 0 {
			return nil, &Result{}
		}
		return o.prepareLocked(ctx, IntentRawNotify, delivery.BuildInput{
			Notifications: valid,
			PropertyToken: propertyToken,
		})
	})
}

// run prepares a call under the lock and completes it, inline when no
// request is needed, otherwise in a new goroutine.
func (o *Orchestrator) run(ctx context.Context, intent Intent, prepare func(context.Context) (*roundTrip, *Result)) <-chan Result {
	out := make(chan Result, 1)
	ctx, op := observability.StartOperation(ctx, o.metrics, intent.String())
	o.metrics.RecordRequestStart(ctx, intent.String())

	finish := func(res Result) {
		res.Intent = intent
		o.dispatchTelemetry(ctx, res.Answers)
		if res.Err != nil {
			o.log.Warn("delivery call failed", logger.Fields(
				logger.FieldIntent, intent.String(),
				logger.FieldError, res.Err.Error(),
			))
		}
		o.metrics.RecordRequestEnd(ctx, intent.String())
		op.End(ctx, res.status(), res.Err)
		out <- res
		close(out)
	}

	o.mu.Lock()
	rt, done := prepare(ctx)
	o.mu.Unlock()

	if done != nil {
		finish(*done)
		return out
	}
	go func() { finish(o.complete(ctx, rt)) }()
	return out
}

// gateLocked checks preview mode, the client code and the privacy status.
func (o *Orchestrator) gateLocked(ctx context.Context, intent Intent) error {
	if !intent.raw() && o.preview != nil {
		if active, msg := o.preview.PreviewActive(ctx); active {
			return apperrors.PreviewMode(msg)
		}
	}
	if o.cfg.ClientCode == "" {
		return apperrors.MissingClientCode()
	}
	if o.state.UpdateClientCode(ctx, o.cfg.ClientCode) {
		o.log.Debug("client code updated", logger.Fields("client_code", o.cfg.ClientCode))
	}
	if status := o.state.Privacy(); status != session.PrivacyOptedIn {
		return apperrors.NotOptedIn(string(status))
	}
	return nil
}

// failLocked ends a call before any request. Pending notifications are
// discarded.
func (o *Orchestrator) failLocked(ctx context.Context, intent Intent, err error) *Result {
	if !intent.raw() {
		o.metrics.RecordDroppedNotifications(ctx, string(apperrors.CodeOf(err)), len(o.queue.DrainAll()))
	}
	return &Result{Err: err}
}

// prepareLocked builds and encodes the request for in. Non-raw intents take
// every pending notification along.
func (o *Orchestrator) prepareLocked(ctx context.Context, intent Intent, in delivery.BuildInput) (*roundTrip, *Result) {
	if !intent.raw() {
		in.Notifications = o.queue.DrainAll()
	}
	in.TntID = o.state.TntID()
	in.ThirdPartyID = o.state.ThirdPartyID()
	in.PropertyToken = util.Coalesce(strings.TrimSpace(in.PropertyToken), o.cfg.PropertyToken)
	in.EnvironmentID = o.cfg.EnvironmentID

	fail := func(err error) (*roundTrip, *Result) {
		o.metrics.RecordDroppedNotifications(ctx, string(apperrors.CodeOf(err)), len(in.Notifications))
		return nil, &Result{Err: err}
	}

	req, err := o.builder.Build(ctx, in)
	if err != nil {
		return fail(err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fail(apperrors.Internal(err))
	}

	sessionID := o.state.CurrentSessionID(ctx)
	host := delivery.Host(o.cfg.Server, o.state.CurrentEdgeHost(ctx), o.cfg.ClientCode)
	return &roundTrip{
		intent:  intent,
		url:     delivery.EndpointURL(host, o.cfg.ClientCode, sessionID),
		body:    body,
		timeout: o.cfg.RoundTripTimeout(),
		input: delivery.ProcessInput{
			Prefetch:  in.Prefetch,
			Execute:   in.Execute,
			SessionID: sessionID,
		},
		notifications: len(in.Notifications),
	}, nil
}

// complete sends rt and applies the response. No lock is held while the
// request is in flight. Load answers prepared before the request are
// returned on failure too.
func (o *Orchestrator) complete(ctx context.Context, rt *roundTrip) Result {
	res := Result{Sent: true, Answers: rt.answers}
	fail := func(err error) Result {
		res.Err = err
		o.metrics.RecordDroppedNotifications(ctx, string(apperrors.CodeOf(err)), rt.notifications)
		return res
	}

	netCtx, span := observability.StartSpan(ctx, observability.SpanDeliveryNetwork, trace.WithAttributes(
		attribute.String(observability.AttrIntent, rt.intent.String()),
		attribute.String(observability.AttrSessionID, rt.input.SessionID),
		attribute.Int(observability.AttrMboxCount, len(rt.input.Prefetch)+len(rt.input.Execute)),
	))
	status, body, err := o.transport.Send(netCtx, rt.url, rt.body, rt.timeout)
	span.SetAttributes(attribute.Int(observability.AttrHTTPStatus, status))
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	res.Status = status
	if err != nil {
		return fail(httpclient.ToAppError(err, endpointService))
	}

	plan := delivery.Process(status, body, rt.input)
	if plan.Err != nil {
		return fail(plan.Err)
	}
	if rt.intent.raw() {
		plan.Prefetched, plan.Loaded = nil, nil
		res.Raw = plan.Raw
	}

	o.mu.Lock()
	changed := o.processor.Apply(ctx, plan)
	snap := o.state.Snapshot()
	o.mu.Unlock()

	if changed {
		o.host.PublishState(ctx, snap)
	}
	if len(rt.clickAnalytics) > 0 {
		o.host.DispatchTelemetry(ctx, rt.clickAnalytics)
		o.metrics.RecordTelemetry(ctx, 1)
	}
	if rt.intent == IntentLoad {
		for j, a := range plan.Answers {
			if j < len(rt.missIndex) {
				res.Answers[rt.missIndex[j]] = a
			}
		}
	}
	return res
}

func (o *Orchestrator) dispatchTelemetry(ctx context.Context, answers []delivery.Answer) {
	n := 0
	for _, a := range answers {
		if len(a.Analytics) == 0 {
			continue
		}
		o.host.DispatchTelemetry(ctx, a.Analytics)
		n++
	}
	o.metrics.RecordTelemetry(ctx, n)
}

// validUnits trims unit names and drops units whose name is blank or too long.
func (o *Orchestrator) validUnits(intent Intent, units []delivery.Unit) []delivery.Unit {
	out := make([]delivery.Unit, 0, len(units))
	for i, u := range units {
		u.Name = strings.TrimSpace(u.Name)
		v := validation.New().
			Required("name", u.Name).
			MaxLength("name", u.Name, MaxUnitNameLength)
		if appErr := v.Validate(); appErr != nil {
			o.log.Warn("content unit dropped", logger.Fields(
				logger.FieldIntent, intent.String(),
				"index", i,
				logger.FieldError, appErr.Message,
			))
			continue
		}
		out = append(out, u)
	}
	return out
}

// validRecords drops records without tokens, a known type or a unit, and
// records whose id is not a UUID.
func (o *Orchestrator) validRecords(records []notification.Record) []notification.Record {
	out := make([]notification.Record, 0, len(records))
	for i, r := range records {
		field := fmt.Sprintf("notifications[%d]", i)
		v := validation.New().
			OptionalUUID(field+".id", r.ID).
			OneOf(field+".type", string(r.Type), []string{string(notification.TypeDisplay), string(notification.TypeClick)}).
			Custom(r.Type != "", field+".type", "is required").
			Custom(len(r.Tokens) > 0, field+".tokens", "is required").
			Custom(r.Mbox != nil && strings.TrimSpace(r.Mbox.Name) != "", field+".mbox.name", "is required")
		if appErr := v.Validate(); appErr != nil {
			o.log.Warn("notification dropped", logger.Fields(logger.FieldError, appErr.Message))
			continue
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.Timestamp == 0 {
			r.Timestamp = o.now().UnixMilli()
		}
		out = append(out, r)
	}
	return out
}
