package params

import (
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]string
		base     map[string]string
		want     map[string]string
	}{
		{"both nil", nil, nil, nil},
		{"override only", map[string]string{"a": "1"}, nil, map[string]string{"a": "1"}},
		{"base only", nil, map[string]string{"b": "2"}, map[string]string{"b": "2"}},
		{
			"union with override winning",
			map[string]string{"a": "override", "c": "3"},
			map[string]string{"a": "base", "b": "2"},
			map[string]string{"a": "override", "b": "2", "c": "3"},
		},
		{"empty maps", map[string]string{}, map[string]string{}, map[string]string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.override, tc.base)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Merge() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	override := map[string]string{"a": "1"}
	base := map[string]string{"a": "0", "b": "2"}
	_ = Merge(override, base)

	if base["a"] != "0" || len(base) != 2 {
		t.Errorf("base was modified: %v", base)
	}
	if len(override) != 1 {
		t.Errorf("override was modified: %v", override)
	}
}

func TestFirst(t *testing.T) {
	local := &Order{ID: "local"}
	global := &Order{ID: "global"}
	if First(local, global) != local {
		t.Error("local must win")
	}
	if First(nil, global) != global {
		t.Error("global is the fallback")
	}
	if First[Order](nil, nil) != nil {
		t.Error("expected nil")
	}
}

func TestResolve_Precedence(t *testing.T) {
	lifecycle := map[string]string{"a.OSVersion": "14", "shared": "lifecycle"}
	unit := &Parameters{
		Parameters:        map[string]string{"shared": "unit", "unitOnly": "u"},
		ProfileParameters: map[string]string{"tier": "unit"},
		Product:           &Product{ID: "p-unit"},
	}
	global := &Parameters{
		Parameters:        map[string]string{"shared": "global"},
		ProfileParameters: map[string]string{"tier": "global", "age": "30"},
		Order:             &Order{ID: "o-global"},
		Product:           &Product{ID: "p-global"},
	}

	got := Resolve(unit, global, lifecycle)

	wantParams := map[string]string{"a.OSVersion": "14", "shared": "global", "unitOnly": "u"}
	if !reflect.DeepEqual(got.Parameters, wantParams) {
		t.Errorf("parameters = %v, want %v", got.Parameters, wantParams)
	}
	if got.ProfileParameters["tier"] != "global" || got.ProfileParameters["age"] != "30" {
		t.Errorf("unexpected profile parameters %v", got.ProfileParameters)
	}
	if got.Product.ID != "p-unit" {
		t.Errorf("unit product must win, got %s", got.Product.ID)
	}
	if got.Order == nil || got.Order.ID != "o-global" {
		t.Errorf("global order is the fallback, got %+v", got.Order)
	}
}

func TestResolve_NilInputs(t *testing.T) {
	got := Resolve(nil, nil, nil)
	if !got.IsEmpty() {
		t.Errorf("expected empty parameters, got %+v", got)
	}
}

func TestIsEmpty(t *testing.T) {
	var nilParams *Parameters
	if !nilParams.IsEmpty() {
		t.Error("nil parameters are empty")
	}
	if (&Parameters{Order: &Order{}}).IsEmpty() {
		t.Error("order makes parameters non-empty")
	}
}
