// Package state holds the flight data shared between the refresh scheduler
// and whatever is presenting it.
//
// # Overview
//
// Store is the single owner of the current flights, the derived country
// list, the selected country filter, the loading flag and the last error.
// The scheduler drives it:
//
//	store.BeginFetch()
//	snap, err := client.Fetch(ctx, region)
//	if err != nil {
//		store.OnFetchFailed(err)
//	} else {
//		store.OnFetchSucceeded(snap)
//	}
//
// Each BeginFetch is ended by OnFetchSucceeded, OnFetchFailed or, for a
// result that is thrown away, EndFetch. The loading flag stays set while
// any begun fetch is still open.
//
// Presentation code reads it either by polling Snapshot or by subscribing:
//
//	views, cancel := store.Subscribe()
//	defer cancel()
//	for v := range views {
//		render(v.Visible)
//	}
//
// # Offline fallback
//
// A successful fetch is written to the cache under cache.LastSnapshotKey.
// When a later fetch fails with opensky.KindOffline the store swaps in that
// cached snapshot instead of reporting an error, and View.Source becomes
// SourceCache. Only when there is nothing cached does the offline message
// reach the user. Every other failure keeps the previous flights and sets
// View.Err.
//
// # Subscriptions
//
// Subscribe replays the current View and afterwards delivers changes
// latest-wins: a reader that falls behind skips intermediate views, never
// blocks the store. Errors is a separate broadcast of surfaced error
// messages with no replay, meant for one-shot alerts.
//
// # Derived values
//
// View.Visible is computed from the flights on every read: flights on the
// ground are dropped, then the country filter applies. View.Countries is
// the distinct non-empty origin countries, sorted. Both are also exported as
// the plain functions Visible and AvailableCountries.
package state
