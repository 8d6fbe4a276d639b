package flight

import "strings"

// State vector positions consumed by Parse. The remaining positions (time
// stamps, altitude, velocity, squawk...) are ignored.
const (
	idxID            = 0
	idxCallsign      = 1
	idxOriginCountry = 2
	idxLongitude     = 5
	idxLatitude      = 6
	idxOnGround      = 8
)

// Record is a single aircraft position. The JSON layout is also the persisted
// cache layout.
type Record struct {
	ID            string  `json:"id"`
	Callsign      string  `json:"callsign"`
	OriginCountry string  `json:"originCountry"`
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	OnGround      bool    `json:"onGround"`
}

// Parse builds a Record from a raw state vector. Missing or mistyped fields
// fall back to their zero values.
func Parse(vec Vector) Record {
	return Record{
		ID:            stringAt(vec, idxID),
		Callsign:      strings.TrimSpace(stringAt(vec, idxCallsign)),
		OriginCountry: stringAt(vec, idxOriginCountry),
		Longitude:     floatAt(vec, idxLongitude),
		Latitude:      floatAt(vec, idxLatitude),
		OnGround:      boolAt(vec, idxOnGround),
	}
}

// ParseAll converts every vector in states. A nil input yields an empty,
// non-nil slice.
func ParseAll(states []Vector) []Record {
	records := make([]Record, 0, len(states))
	for _, vec := range states {
		records = append(records, Parse(vec))
	}
	return records
}

func stringAt(vec Vector, i int) string {
	s, _ := vec.At(i).AsString()
	return s
}

func floatAt(vec Vector, i int) float64 {
	f, _ := vec.At(i).AsFloat()
	return f
}

func boolAt(vec Vector, i int) bool {
	b, _ := vec.At(i).AsBool()
	return b
}
