// Package notification batches display and click records until the next
// outbound delivery request.
//
// Records are only built when the cached content unit carries the server
// token the endpoint needs to attribute the interaction. The queue is
// drained atomically; drained records are never re-queued.
package notification
