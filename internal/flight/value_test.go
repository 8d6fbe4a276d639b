package flight

import (
	"encoding/json"
	"testing"
)

func TestValue_UnmarshalProbeOrder(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind Kind
	}{
		{"null", `null`, KindNull},
		{"bool", `true`, KindBool},
		{"int", `1700000000`, KindInt},
		{"negative int", `-3`, KindInt},
		{"float", `-73.9`, KindFloat},
		{"exponent", `1e3`, KindFloat},
		{"string", `"UAL456 "`, KindString},
		{"numeric string stays string", `"42"`, KindString},
		{"array is no value", `[1,2]`, KindNull},
		{"object is no value", `{"a":1}`, KindNull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tc.in, err)
			}
			if v.Kind() != tc.kind {
				t.Fatalf("Unmarshal(%s) kind = %v, want %v", tc.in, v.Kind(), tc.kind)
			}
		})
	}
}

func TestValue_AsFloatAcceptsIntegers(t *testing.T) {
	f, ok := Int(7).AsFloat()
	if !ok || f != 7 {
		t.Fatalf("Int(7).AsFloat() = %v, %v; want 7, true", f, ok)
	}
	if _, ok := String("7").AsFloat(); ok {
		t.Fatalf("String.AsFloat should not coerce")
	}
	if _, ok := Null().AsBool(); ok {
		t.Fatalf("Null.AsBool should report false")
	}
}

func TestVector_DecodesMixedRow(t *testing.T) {
	var vec Vector
	raw := `["abc123","UAL456 ","United States",1700000000,1700000000.5,-73.9,40.7,null,false]`
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(vec) != 9 {
		t.Fatalf("len = %d, want 9", len(vec))
	}
	want := []Kind{KindString, KindString, KindString, KindInt, KindFloat, KindFloat, KindFloat, KindNull, KindBool}
	for i, k := range want {
		if vec[i].Kind() != k {
			t.Fatalf("vec[%d] kind = %v, want %v", i, vec[i].Kind(), k)
		}
	}
	if got := vec.At(42); got.Kind() != KindNull {
		t.Fatalf("At(out of range) = %v, want null", got.Kind())
	}

	out, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(out) != `["abc123","UAL456 ","United States",1700000000,1700000000.5,-73.9,40.7,null,false]` {
		t.Fatalf("Marshal = %s", out)
	}
}
