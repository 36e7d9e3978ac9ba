package notification

import (
	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/params"
)

// Type is the interaction being reported.
type Type string

const (
	TypeDisplay Type = "display"
	TypeClick   Type = "click"
)

// MboxRef points a record at the content unit it reports on.
type MboxRef struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// Record is one pending notification, in its wire shape.
type Record struct {
	ID                string            `json:"id"`
	Timestamp         int64             `json:"timestamp"`
	Type              Type              `json:"type"`
	Mbox              *MboxRef          `json:"mbox,omitempty"`
	Tokens            []string          `json:"tokens,omitempty"`
	Parameters        map[string]string `json:"parameters,omitempty"`
	ProfileParameters map[string]string `json:"profileParameters,omitempty"`
	Order             *params.Order     `json:"order,omitempty"`
	Product           *params.Product   `json:"product,omitempty"`
}

func (r *Record) applyParameters(p params.Parameters) {
	r.Parameters = p.Parameters
	r.ProfileParameters = p.ProfileParameters
	r.Order = p.Order
	r.Product = p.Product
}

// DisplayTokens returns the event tokens of a cached record's options. When
// no option carries one, tokens of "display" metrics are used instead.
func DisplayTokens(record jsonvalue.Value) []string {
	var tokens []string
	for _, opt := range record.Get("options").Items() {
		if tok := opt.Get("eventToken").StringOr(""); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) > 0 {
		return tokens
	}
	for _, m := range record.Get("metrics").Items() {
		if m.Get("type").StringOr("") != string(TypeDisplay) {
			continue
		}
		if tok := m.Get("eventToken").StringOr(""); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// ClickMetric returns the first "click" metric of a cached record that has a
// non-empty event token.
func ClickMetric(record jsonvalue.Value) (jsonvalue.Value, bool) {
	for _, m := range record.Get("metrics").Items() {
		if m.Get("type").StringOr("") != string(TypeClick) {
			continue
		}
		if m.Get("eventToken").StringOr("") != "" {
			return m, true
		}
	}
	return jsonvalue.Null(), false
}
