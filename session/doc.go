// Package session owns visitor identity and session continuity.
//
// State keeps the primary visitor id (tntId), the third-party id, the tenant
// client code, the edge host returned by the endpoint, and the session id
// with its last-activity timestamp. Every field except the client code is
// written through to a kvstore.Store; blank values are never stored, they
// remove the key instead.
//
// The edge host and the session id are only valid inside the session window:
// once now - lastActivity exceeds the timeout both are discarded, and a fresh
// session id is generated on the next request.
package session
