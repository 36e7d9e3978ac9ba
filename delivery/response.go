package delivery

import (
	"strings"

	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/notification"
)

// Answer is the caller-visible result for one requested content unit.
type Answer struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	// ResponseTokens merges the responseTokens of every option.
	ResponseTokens map[string]jsonvalue.Value `json:"responseTokens,omitempty"`
	// Analytics is the derived telemetry payload, nil when there is none.
	Analytics map[string]string `json:"analytics,omitempty"`
	// ClickAnalytics is the derived payload of the unit's click metric.
	ClickAnalytics map[string]string `json:"clickAnalytics,omitempty"`
	// Found is false when DefaultContent was used.
	Found     bool `json:"found"`
	FromCache bool `json:"fromCache,omitempty"`
}

// AnswerFor builds the answer for unit from record. A null record, or one
// without content, answers with the unit's default content.
func AnswerFor(unit Unit, record jsonvalue.Value, sessionID string) Answer {
	a := Answer{Name: unit.Name, Content: unit.DefaultContent}
	if !record.IsObject() {
		return a
	}
	if content, ok := Content(record); ok {
		a.Content = content
		a.Found = true
	}
	a.ResponseTokens = ResponseTokens(record)
	a.Analytics = AnalyticsPayload(record, sessionID)
	if metric, ok := notification.ClickMetric(record); ok {
		a.ClickAnalytics = ClickAnalyticsPayload(metric, sessionID)
	}
	return a
}

// Content concatenates the content of every option. String content is used
// as is; structured content is rendered as compact JSON.
func Content(record jsonvalue.Value) (string, bool) {
	var (
		sb    strings.Builder
		found bool
	)
	for _, opt := range record.Get("options").Items() {
		c := opt.Get("content")
		switch c.Kind() {
		case jsonvalue.KindNull:
			continue
		case jsonvalue.KindString:
			s, _ := c.AsString()
			sb.WriteString(s)
		default:
			sb.WriteString(c.String())
		}
		found = true
	}
	return sb.String(), found
}

// ResponseTokens merges the responseTokens objects of every option. Later
// options win on conflicts.
func ResponseTokens(record jsonvalue.Value) map[string]jsonvalue.Value {
	var out map[string]jsonvalue.Value
	for _, opt := range record.Get("options").Items() {
		tokens, ok := opt.Get("responseTokens").AsObject()
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]jsonvalue.Value, len(tokens))
		}
		for k, v := range tokens {
			out[k] = v
		}
	}
	return out
}

// mboxesByName indexes an array of content unit records by name. Records
// without a name are dropped.
func mboxesByName(mboxes jsonvalue.Value) map[string]jsonvalue.Value {
	items := mboxes.Items()
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]jsonvalue.Value, len(items))
	for _, m := range items {
		if name := m.Get("name").StringOr(""); name != "" {
			out[name] = m
		}
	}
	return out
}
