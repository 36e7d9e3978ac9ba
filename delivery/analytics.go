package delivery

import "github.com/kbukum/deliverykit/jsonvalue"

// AnalyticsKeyPrefix marks keys forwarded to analytics as context data.
const AnalyticsKeyPrefix = "&."

// AnalyticsSessionKey carries the session id alongside a forwarded payload.
const AnalyticsSessionKey = "a.target.sessionId"

// AnalyticsPayload derives the telemetry payload of a content unit record
// from its analytics.payload member. It returns nil when the record carries
// no payload.
func AnalyticsPayload(record jsonvalue.Value, sessionID string) map[string]string {
	return prefixPayload(record.Path("analytics", "payload"), sessionID)
}

// ClickAnalyticsPayload is AnalyticsPayload for the click metric of a record.
func ClickAnalyticsPayload(metric jsonvalue.Value, sessionID string) map[string]string {
	return prefixPayload(metric.Path("analytics", "payload"), sessionID)
}

func prefixPayload(payload jsonvalue.Value, sessionID string) map[string]string {
	raw := payload.StringMapOf()
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw)+1)
	for k, v := range raw {
		out[AnalyticsKeyPrefix+k] = v
	}
	if sessionID != "" {
		out[AnalyticsSessionKey] = sessionID
	}
	return out
}
