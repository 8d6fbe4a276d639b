package flight

import "testing"

func TestViewport_Region(t *testing.T) {
	vp := Viewport{CenterLat: 40, CenterLon: 0, SpanLat: 20, SpanLon: 20}
	got := vp.Region()
	want := Region{MinLat: 30, MinLon: -10, MaxLat: 50, MaxLon: 10}
	if got != want {
		t.Fatalf("Region = %+v, want %+v", got, want)
	}
	if !got.Valid() {
		t.Fatalf("Region %v should be valid", got)
	}
}

func TestRegion_Valid(t *testing.T) {
	cases := []struct {
		name string
		r    Region
		want bool
	}{
		{"ok", Region{MinLat: 30, MinLon: -10, MaxLat: 50, MaxLon: 10}, true},
		{"inverted lat", Region{MinLat: 50, MaxLat: 30}, false},
		{"off globe", Region{MinLat: -95, MaxLat: 0}, false},
		{"point", Region{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Valid(); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestViewport_PanAndZoom(t *testing.T) {
	vp := Viewport{CenterLat: 0, CenterLon: 175, SpanLat: 10, SpanLon: 20}
	panned := vp.Pan(0.5, 0.5)
	if panned.CenterLat != 5 {
		t.Fatalf("CenterLat = %v, want 5", panned.CenterLat)
	}
	if panned.CenterLon != -175 {
		t.Fatalf("CenterLon = %v, want -175 (wrapped)", panned.CenterLon)
	}
	zoomed := vp.Zoom(0.5)
	if zoomed.SpanLat != 5 || zoomed.SpanLon != 10 {
		t.Fatalf("Zoom = %+v", zoomed)
	}
	if same := vp.Zoom(0); same != vp {
		t.Fatalf("Zoom(0) should be a no-op")
	}
}

func TestRegion_QueryValues(t *testing.T) {
	q := Region{MinLat: 30, MinLon: -10.5, MaxLat: 50, MaxLon: 10}.QueryValues()
	if q["lamin"] != "30" || q["lomin"] != "-10.5" || q["lamax"] != "50" || q["lomax"] != "10" {
		t.Fatalf("QueryValues = %v", q)
	}
}
