// Package jsonvalue provides a tagged JSON value type.
//
// Delivery responses have a loosely specified shape: fields may be missing,
// null, or of an unexpected type. Value keeps the whole document while the
// accessors return ok=false (or a Null value) instead of failing when the
// shape does not match, so callers read exactly what they need.
//
//	v, err := jsonvalue.Parse(body)
//	host := v.Get("edgeHost").StringOr("")
//	for _, m := range v.Path("prefetch", "mboxes").Items() { ... }
package jsonvalue
