// Package view drives one visualization pane.
//
// A [Pane] owns a render scene and moves through three states: Idle,
// Loading and Rendered. [Pane.ShowComponent] shows a loading indicator,
// fetches the focus component's neighborhood, lays it out and binds the
// result into the scene with object constancy.
//
// # Event loop
//
// All scene mutation happens on the pane's single event-loop goroutine.
// Fetches run on their own goroutines and post their completion back to
// the loop; force layouts advance a batch of steps per loop turn and
// re-post themselves, so a new request can arrive between batches.
//
// # Staleness
//
// Every request gets a sequence number. A completion whose number is not
// the latest issued is discarded without touching the scene, so the
// diagram always reflects the most recent request.
//
// # Failure
//
// A failed fetch or layout returns the pane to Idle with the loading
// indicator removed and the previous diagram intact. An unknown focus is
// reported through Frame.NotFound, not as an error.
package view
