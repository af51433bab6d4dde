// Package selection links hover and click on pixel columns to detail views.
//
// A [Coordinator] belongs to one view. Hovering a column arms a dwell timer
// held in a [Deferred]; if the pointer is still on the column when it fires,
// a detail request goes to the [DetailRenderer]. Leaving the column cancels
// the timer unconditionally. Clicking issues an immediate open request:
// a motif column opens a graphlet panel through the [PanelHost], a graphlet
// column focuses the node in the detail view. Placeholder columns ignore all
// three events.
//
// Timers run on a [Scheduler]. [LoopScheduler] posts fired callbacks back
// onto the owning event loop so that coordinator state is only touched from
// that loop; [ManualClock] is a deterministic scheduler for tests.
//
// [State] is the selection context shared by all views of a session: open
// panels, selected columns and the single node-link detail descriptor.
package selection
