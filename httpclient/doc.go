// Package httpclient posts delivery requests over net/http.
//
// Client separates the connect timeout (dialing) from the per-request read
// timeout and classifies failures into typed errors. Non-2xx responses are
// returned with their body so the caller can read the endpoint's message.
//
//	client, err := httpclient.New(httpclient.Config{ConnectTimeout: 2 * time.Second})
//	status, body, err := client.Send(ctx, url, payload, 2*time.Second)
package httpclient
