// Package opensky is the client for the OpenSky Network REST API.
//
// The only call skytrack needs is GET /states/all with a bounding box:
//
//	client, _ := opensky.NewClient(opensky.Options{BaseURL: cfg.APIBaseURL})
//	snap, err := client.Fetch(ctx, flight.Region{MinLat: 30, MinLon: -10, MaxLat: 50, MaxLon: 10})
//
// # Errors
//
// Every failure is a *FetchError whose Kind tells the caller what to do:
//
//   - KindOffline: the reachability probe failed before any request was
//     sent, or the connection itself could not be made (DNS or dial). The
//     flight store answers this with the cached snapshot.
//   - KindInvalidRequest: the region or URL could not form a request.
//   - KindHTTP: a non-2xx status. When the body carries a JSON error
//     ({"code", "message", "details"}) its message is surfaced.
//   - KindDecoding: a 2xx body that is not a states payload, including one
//     without "time". A missing or null "states" is an empty snapshot.
//   - KindUnknown: other transport failures, including context cancellation.
//
// FetchError.Error returns a message suitable for showing to a user.
//
// # Request tracing
//
// Each request carries a fresh X-Request-ID. Requests and responses are
// logged at debug level under that id, with bodies truncated. Fetch also
// opens an OpenTelemetry span and records outcome and latency in the
// metrics collector when one is configured.
package opensky
