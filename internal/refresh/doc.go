// Package refresh runs the polling loop: one region at a time, fetched once
// when watching starts and then on every tick.
//
// The scheduler has three states. Idle does nothing. Watching fetches on
// each tick. Suspended keeps the region and timer but drops ticks; it is
// used while a modal has the user's attention, and optionally entered
// automatically after a fetch error surfaces (Options.SuspendOnError).
//
//	Idle ──StartWatching──▶ Watching ◀──Resume── Suspended
//	  ▲                        │  └────Suspend─────▲
//	  └──────StopWatching──────┘
//
// Calling StartWatching again, for any region, cancels the current timer and
// in-flight fetches, then starts over with an immediate fetch. Results that
// belong to an older watch, or that are overtaken by a newer fetch of the
// same watch, are discarded.
package refresh
