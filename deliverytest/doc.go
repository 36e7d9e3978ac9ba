// Package deliverytest provides a scripted delivery endpoint for tests.
//
//	srv := deliverytest.NewServer()
//	srv.Start(ctx)
//	defer srv.Stop(ctx)
//	srv.Reply(http.StatusOK, deliverytest.Body{TntID: "T1", Prefetch: []deliverytest.Mbox{{Name: "u1", Content: "hi"}}})
//
// Point an orchestrator at srv.BaseURL() through its server setting and
// inspect srv.Requests() afterwards.
package deliverytest
