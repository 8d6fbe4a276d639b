package flight

// Snapshot is one fetched batch of flights plus the source timestamp in
// seconds.
type Snapshot struct {
	Time    int64    `json:"time"`
	Records []Record `json:"records"`
}

// NewSnapshot parses raw states into a Snapshot.
func NewSnapshot(time int64, states []Vector) Snapshot {
	return Snapshot{Time: time, Records: ParseAll(states)}
}

// Clone returns a copy that shares no backing array with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Time: s.Time, Records: CloneRecords(s.Records)}
}

// CloneRecords copies records. Empty input yields an empty, non-nil slice.
func CloneRecords(records []Record) []Record {
	dup := make([]Record, len(records))
	copy(dup, records)
	return dup
}
