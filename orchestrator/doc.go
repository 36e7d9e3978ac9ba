// Package orchestrator runs delivery requests end to end.
//
// An Orchestrator owns the session state, the content cache and the
// notification queue. Each call checks the request gates, assembles a wire
// request under a single lock and returns a channel. The round trip runs in
// its own goroutine; its response is interpreted without locks and applied
// under the lock again, after which exactly one Result is sent on the channel.
//
//	o, err := orchestrator.New(ctx, orchestrator.Options{
//	    Config:    cfg,
//	    Store:     store,
//	    Transport: client,
//	    Device:    delivery.StaticDevice{UserAgent: "mboxctl/1.0"},
//	})
//	res := <-o.Prefetch(ctx, []delivery.Unit{{Name: "home-hero"}}, nil)
package orchestrator
