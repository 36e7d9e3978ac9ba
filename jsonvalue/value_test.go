package jsonvalue

import (
	"encoding/json"
	"testing"
)

const sampleResponse = `{
  "status": 200,
  "edgeHost": "mboxedge28.tt.omtrdc.net",
  "id": {"tntId": "T1.28_0"},
  "prefetch": {"mboxes": [
    {"index": 0, "name": "home", "options": [{"type": "json", "content": {"k": "v"}}]}
  ]}
}`

func TestParseAndNavigate(t *testing.T) {
	v, err := Parse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected object, got %s", v.Kind())
	}
	if got := v.Get("edgeHost").StringOr(""); got != "mboxedge28.tt.omtrdc.net" {
		t.Errorf("unexpected edge host %q", got)
	}
	if status, ok := v.Get("status").AsInt64(); !ok || status != 200 {
		t.Errorf("expected status 200, got %d (ok=%v)", status, ok)
	}
	if got := v.Path("id", "tntId").StringOr(""); got != "T1.28_0" {
		t.Errorf("unexpected tntId %q", got)
	}

	mboxes := v.Path("prefetch", "mboxes").Items()
	if len(mboxes) != 1 {
		t.Fatalf("expected 1 mbox, got %d", len(mboxes))
	}
	content := mboxes[0].Get("options").Index(0).Get("content")
	if content.Get("k").StringOr("") != "v" {
		t.Errorf("unexpected content %s", content)
	}
}

func TestMissingShapesDegradeToNull(t *testing.T) {
	v, _ := Parse([]byte(`{"a": 1, "b": [1,2]}`))

	if !v.Path("x", "y", "z").IsNull() {
		t.Error("expected null for missing path")
	}
	if !v.Get("a").Get("nested").IsNull() {
		t.Error("expected null when indexing a number")
	}
	if !v.Get("b").Index(5).IsNull() {
		t.Error("expected null for out-of-range index")
	}
	if v.Get("a").Items() != nil {
		t.Error("expected nil items for non-array")
	}
	if _, ok := v.Get("a").AsString(); ok {
		t.Error("number must not read as string")
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "{", "not json", `{"a":1} trailing`} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	v, err := Parse([]byte(`{"n":12345678901234,"f":1.5,"s":"x","b":true,"z":null,"a":[1,"two"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !v.Equal(back) {
		t.Errorf("round trip changed value: %s vs %s", v, back)
	}
	if n, _ := back.Get("n").AsInt64(); n != 12345678901234 {
		t.Errorf("large integer lost precision: %d", n)
	}
}

func TestUnmarshalIntoStructField(t *testing.T) {
	var holder struct {
		Payload Value `json:"payload"`
	}
	if err := json.Unmarshal([]byte(`{"payload":{"pe":"tnt"}}`), &holder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holder.Payload.Get("pe").StringOr("") != "tnt" {
		t.Errorf("unexpected payload %s", holder.Payload)
	}
}

func TestPickAndWith(t *testing.T) {
	v := Object(map[string]Value{
		"name":    String("home"),
		"metrics": Array(Object(map[string]Value{"type": String("click")})),
		"options": Array(String("big")),
	})

	reduced := v.Pick("name", "metrics", "missing")
	if reduced.Len() != 2 || reduced.Has("options") || reduced.Has("missing") {
		t.Errorf("unexpected reduced object %s", reduced)
	}

	updated := v.With("state", String("s1"))
	if v.Has("state") {
		t.Error("With must not mutate the receiver")
	}
	if updated.Get("state").StringOr("") != "s1" {
		t.Error("expected new member")
	}

	fromNull := Null().With("a", Int(1))
	if !fromNull.IsObject() || fromNull.Len() != 1 {
		t.Error("With on null should create an object")
	}
}

func TestObjectCopiesInput(t *testing.T) {
	m := map[string]Value{"a": Int(1)}
	v := Object(m)
	m["b"] = Int(2)
	if v.Has("b") {
		t.Error("Object must copy its input")
	}
}

func TestStringMapOf(t *testing.T) {
	v, _ := Parse([]byte(`{"s":"x","n":3,"b":false,"o":{},"z":null}`))
	got := v.StringMapOf()
	want := map[string]string{"s": "x", "n": "3", "b": "false"}
	if len(got) != len(want) {
		t.Fatalf("unexpected map %v", got)
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("key %s: got %q want %q", k, got[k], w)
		}
	}
}

func TestInterface(t *testing.T) {
	v, _ := Parse([]byte(`{"i":2,"f":2.5,"a":["x"]}`))
	m, ok := v.Interface().(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v.Interface())
	}
	if m["i"] != int64(2) {
		t.Errorf("expected int64 2, got %#v", m["i"])
	}
	if m["f"] != 2.5 {
		t.Errorf("expected 2.5, got %#v", m["f"])
	}
	if arr, ok := m["a"].([]any); !ok || arr[0] != "x" {
		t.Errorf("unexpected array %#v", m["a"])
	}
}

func TestFromAnyRejectsUnknownTypes(t *testing.T) {
	if _, err := FromAny(struct{}{}); err == nil {
		t.Error("expected error for struct input")
	}
}

func TestKeysSorted(t *testing.T) {
	v := StringMap(map[string]string{"b": "1", "a": "2"})
	keys := v.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestEmptyContainersMarshal(t *testing.T) {
	if Array().String() != "[]" {
		t.Errorf("expected [], got %s", Array().String())
	}
	if Object(nil).String() != "{}" {
		t.Errorf("expected {}, got %s", Object(nil).String())
	}
	if Null().String() != "null" {
		t.Errorf("expected null, got %s", Null().String())
	}
}
