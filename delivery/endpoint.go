package delivery

import (
	"net/url"
	"strings"
)

// DefaultHostSuffix completes the default host derived from a client code.
const DefaultHostSuffix = ".tt.omtrdc.net"

const deliveryPath = "/rest/v1/delivery/"

// Host picks the endpoint host: a configured server, else the edge host,
// else the default host of the client code.
func Host(server, edgeHost, clientCode string) string {
	if s := strings.TrimSpace(server); s != "" {
		return s
	}
	if h := strings.TrimSpace(edgeHost); h != "" {
		return h
	}
	return clientCode + DefaultHostSuffix
}

// EndpointURL returns the delivery URL for host. The scheme is https unless
// host spells out its own.
func EndpointURL(host, clientCode, sessionID string) string {
	scheme := "https"
	if i := strings.Index(host, "://"); i >= 0 {
		scheme, host = host[:i], host[i+3:]
	}
	host = strings.TrimRight(host, "/")

	q := url.Values{}
	q.Set("client", clientCode)
	q.Set("sessionId", sessionID)
	u := url.URL{Scheme: scheme, Host: host, Path: deliveryPath, RawQuery: q.Encode()}
	return u.String()
}
