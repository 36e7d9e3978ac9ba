package deliverytest

import "encoding/json"

// Mbox describes a content unit in a scripted response.
type Mbox struct {
	Name string
	// Content is the option content; strings are sent as html options,
	// anything else as json.
	Content        any
	EventToken     string
	ClickToken     string
	State          string
	Analytics      map[string]string
	ResponseTokens map[string]any
}

// Body builds a successful response body.
type Body struct {
	TntID    string
	EdgeHost string
	Prefetch []Mbox
	Execute  []Mbox
}

// MarshalJSON renders the wire shape of a delivery response.
func (b Body) MarshalJSON() ([]byte, error) {
	out := map[string]any{"status": 200}
	if b.TntID != "" {
		out["id"] = map[string]any{"tntId": b.TntID}
	}
	if b.EdgeHost != "" {
		out["edgeHost"] = b.EdgeHost
	}
	if len(b.Prefetch) > 0 {
		out["prefetch"] = map[string]any{"mboxes": mboxes(b.Prefetch)}
	}
	if len(b.Execute) > 0 {
		out["execute"] = map[string]any{"mboxes": mboxes(b.Execute)}
	}
	return json.Marshal(out)
}

func mboxes(in []Mbox) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for i, m := range in {
		rec := map[string]any{"index": i, "name": m.Name}
		if m.State != "" {
			rec["state"] = m.State
		}
		if m.Content != nil {
			opt := map[string]any{"type": "json", "content": m.Content}
			if _, ok := m.Content.(string); ok {
				opt["type"] = "html"
			}
			if m.EventToken != "" {
				opt["eventToken"] = m.EventToken
			}
			if len(m.ResponseTokens) > 0 {
				opt["responseTokens"] = m.ResponseTokens
			}
			rec["options"] = []map[string]any{opt}
		}
		if m.ClickToken != "" {
			rec["metrics"] = []map[string]any{{"type": "click", "eventToken": m.ClickToken}}
		}
		if len(m.Analytics) > 0 {
			rec["analytics"] = map[string]any{"payload": m.Analytics}
		}
		out = append(out, rec)
	}
	return out
}
