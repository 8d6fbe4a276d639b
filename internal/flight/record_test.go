package flight

import (
	"encoding/json"
	"testing"
)

func TestParse_FullVector(t *testing.T) {
	vec := Vector{
		String("abc123"),
		String("  UAL456 "),
		String("United States"),
		Int(1700000000),
		Int(1700000000),
		Float(-73.9),
		Float(40.7),
		Float(10000),
		Bool(true),
	}
	got := Parse(vec)
	want := Record{
		ID:            "abc123",
		Callsign:      "UAL456",
		OriginCountry: "United States",
		Longitude:     -73.9,
		Latitude:      40.7,
		OnGround:      true,
	}
	if got != want {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestParse_DefaultsForShortOrMistypedVectors(t *testing.T) {
	cases := []struct {
		name string
		vec  Vector
		want Record
	}{
		{"nil", nil, Record{}},
		{"empty", Vector{}, Record{}},
		{"only id", Vector{String("a1")}, Record{ID: "a1"}},
		{"eight elements", Vector{String("a1"), String("X"), String("Turkey"), Null(), Null(), Float(1), Float(2), Null()},
			Record{ID: "a1", Callsign: "X", OriginCountry: "Turkey", Longitude: 1, Latitude: 2}},
		{"wrong types", Vector{Int(5), Bool(true), Float(1), Null(), Null(), String("x"), Bool(false), Null(), String("true")},
			Record{}},
		{"all null", Vector{Null(), Null(), Null(), Null(), Null(), Null(), Null(), Null(), Null()}, Record{}},
		{"integer coordinates", Vector{String("a"), Null(), Null(), Null(), Null(), Int(-10), Int(30), Null(), Bool(false)},
			Record{ID: "a", Longitude: -10, Latitude: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.vec); got != tc.want {
				t.Fatalf("Parse = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestParseAll_NilYieldsEmpty(t *testing.T) {
	got := ParseAll(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("ParseAll(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestRecord_PersistedLayout(t *testing.T) {
	data, err := json.Marshal(Record{ID: "a", Callsign: "B", OriginCountry: "C", Longitude: 1, Latitude: 2, OnGround: true})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"id":"a","callsign":"B","originCountry":"C","longitude":1,"latitude":2,"onGround":true}`
	if string(data) != want {
		t.Fatalf("Marshal = %s, want %s", data, want)
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := NewSnapshot(10, []Vector{{String("a")}, {String("b")}})
	dup := s.Clone()
	dup.Records[0].ID = "changed"
	if s.Records[0].ID != "a" {
		t.Fatalf("Clone shares records with source")
	}
	if dup.Time != 10 || len(dup.Records) != 2 {
		t.Fatalf("Clone = %#v", dup)
	}
}
