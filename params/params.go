package params

import (
	"maps"

	"dario.cat/mergo"
)

// Order describes a purchase attached to a request or notification.
type Order struct {
	ID                  string   `json:"id,omitempty"`
	Total               float64  `json:"total,omitempty"`
	PurchasedProductIDs []string `json:"purchasedProductIds,omitempty"`
}

// Product describes the product a content unit is shown for.
type Product struct {
	ID         string `json:"id,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

// Parameters groups everything a caller can attach to a content unit or to a
// whole request.
type Parameters struct {
	Parameters        map[string]string
	ProfileParameters map[string]string
	Order             *Order
	Product           *Product
}

// IsEmpty reports whether p carries nothing.
func (p *Parameters) IsEmpty() bool {
	return p == nil ||
		(len(p.Parameters) == 0 && len(p.ProfileParameters) == 0 && p.Order == nil && p.Product == nil)
}

// Merge combines two maps. Keys of override replace the same keys of base.
// When only one side is non-nil it is returned unchanged; nil, nil yields nil.
// Neither input is modified.
func Merge(override, base map[string]string) map[string]string {
	switch {
	case override == nil && base == nil:
		return nil
	case override == nil:
		return base
	case base == nil:
		return override
	}

	merged := maps.Clone(base)
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		// mergo only fails on mismatched kinds, which the signature rules out.
		for k, v := range override {
			merged[k] = v
		}
	}
	return merged
}

// First returns the first non-nil selection, local before global.
func First[T any](local, global *T) *T {
	if local != nil {
		return local
	}
	return global
}

// Resolve applies request precedence for one content unit: unit values
// override lifecycle values, and global values override both. Order and
// product come from the unit when present, otherwise from global.
func Resolve(unit, global *Parameters, lifecycle map[string]string) Parameters {
	if unit == nil {
		unit = &Parameters{}
	}
	if global == nil {
		global = &Parameters{}
	}
	return Parameters{
		Parameters:        Merge(global.Parameters, Merge(unit.Parameters, lifecycle)),
		ProfileParameters: Merge(global.ProfileParameters, unit.ProfileParameters),
		Order:             First(unit.Order, global.Order),
		Product:           First(unit.Product, global.Product),
	}
}
