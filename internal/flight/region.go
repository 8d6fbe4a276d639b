package flight

import (
	"fmt"
	"math"
	"strconv"
)

// Region is a latitude/longitude bounding box. It is comparable with == and is
// used as the identity of a watch session.
type Region struct {
	MinLat float64 `json:"lamin" toml:"lamin"`
	MinLon float64 `json:"lomin" toml:"lomin"`
	MaxLat float64 `json:"lamax" toml:"lamax"`
	MaxLon float64 `json:"lomax" toml:"lomax"`
}

// Viewport is a map-style center and span.
type Viewport struct {
	CenterLat float64 `json:"center_lat" toml:"center_lat"`
	CenterLon float64 `json:"center_lon" toml:"center_lon"`
	SpanLat   float64 `json:"span_lat" toml:"span_lat"`
	SpanLon   float64 `json:"span_lon" toml:"span_lon"`
}

// Region converts the viewport into its bounding box.
func (v Viewport) Region() Region {
	return Region{
		MinLat: v.CenterLat - v.SpanLat/2,
		MinLon: v.CenterLon - v.SpanLon/2,
		MaxLat: v.CenterLat + v.SpanLat/2,
		MaxLon: v.CenterLon + v.SpanLon/2,
	}
}

// Pan shifts the viewport center by a fraction of its span.
func (v Viewport) Pan(latFrac, lonFrac float64) Viewport {
	v.CenterLat = clamp(v.CenterLat+latFrac*v.SpanLat, -90, 90)
	v.CenterLon = wrapLon(v.CenterLon + lonFrac*v.SpanLon)
	return v
}

// Zoom scales the span; factors below 1 zoom in.
func (v Viewport) Zoom(factor float64) Viewport {
	if factor <= 0 {
		return v
	}
	v.SpanLat = clamp(v.SpanLat*factor, 0.1, 180)
	v.SpanLon = clamp(v.SpanLon*factor, 0.1, 360)
	return v
}

// Valid reports whether the box is well formed and on the globe.
func (r Region) Valid() bool {
	if r.MinLat > r.MaxLat || r.MinLon > r.MaxLon {
		return false
	}
	return r.MinLat >= -90 && r.MaxLat <= 90 && r.MinLon >= -180 && r.MaxLon <= 180
}

// Contains reports whether the point lies inside the box, edges included.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// QueryValues returns the four bounding box parameters in API order.
func (r Region) QueryValues() map[string]string {
	return map[string]string{
		"lamin": formatCoord(r.MinLat),
		"lomin": formatCoord(r.MinLon),
		"lamax": formatCoord(r.MaxLat),
		"lomax": formatCoord(r.MaxLon),
	}
}

func (r Region) String() string {
	return fmt.Sprintf("[%s,%s → %s,%s]",
		formatCoord(r.MinLat), formatCoord(r.MinLon), formatCoord(r.MaxLat), formatCoord(r.MaxLon))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
