package host

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetratelabs/wazero/api"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		sig     string
		params  []api.ValueType
		results []api.ValueType
	}{
		{"func()", nil, nil},
		{"func(self: u32) -> f32",
			[]api.ValueType{api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeF32}},
		{"func(self: u32, ret: u32)",
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			nil},
		{"func(self: u32) -> string",
			[]api.ValueType{api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}},
		{"func(a: u64, b: f64) -> u32",
			[]api.ValueType{api.ValueTypeI64, api.ValueTypeF64},
			[]api.ValueType{api.ValueTypeI32}},
		{"func(self: u32, dest: u32, max: u32, show-year: bool)",
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			nil},
		{"func(s: string)",
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			nil},
		{"func() -> (u32, u32)",
			nil,
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			params, results, err := parseSignature(tt.sig)
			if err != nil {
				t.Fatalf("parseSignature(%q): %v", tt.sig, err)
			}
			if diff := cmp.Diff(tt.params, params); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.results, results); diff != "" {
				t.Fatalf("results mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSignatureRejects(t *testing.T) {
	bad := []string{
		"",
		"get-hour",
		"func(self: u32) -> record",
		"func(x: list<u32>)",
	}
	for _, sig := range bad {
		if _, _, err := parseSignature(sig); err == nil {
			t.Fatalf("parseSignature(%q) succeeded, want error", sig)
		}
	}
}
