// Package delivery assembles delivery requests and interprets responses.
//
// Builder turns a batch of content units plus session, identity, device and
// lifecycle context into a wire Request. Process is a pure function from a
// response body to a Plan describing what should change; Processor.Apply
// performs those changes on the session state and the content cache.
//
//	req, err := builder.Build(ctx, delivery.BuildInput{Kind: delivery.KindPrefetch, Units: units})
//	...
//	plan := delivery.Process(status, body, delivery.KindPrefetch, units, sessionID)
//	changed := processor.Apply(ctx, plan)
package delivery
