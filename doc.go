// Package tether binds a live editor engine instance to a host
// application's lifecycle. The caller supplies a declarative Config on
// every lifecycle tick; tether materializes the editor on first mount,
// then computes the minimal set of compartment reconfigurations, text
// edits, and selection moves needed to follow each subsequent Config -
// never tearing the editor down, so undo history and selection survive
// reconfiguration.
//
// A single mounted editor surface can be time-shared across many logical
// documents: when Config.DocumentID changes, the outgoing document's state
// is snapshotted (undo history by default) and the incoming document's
// state is restored or created fresh, with document-changing and
// document-changed hooks fired around the boundary.
//
// Editor-internal events are re-exposed through a typed notification
// registry (text changed, state changed, document changing/changed), with
// text notifications optionally debounced or throttled.
package tether
