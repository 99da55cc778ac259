// Package engine implements the editor-engine contract the binding layer
// drives: an editor state value (document text, selection, extension list),
// compartments for independently reconfigurable extension slots, atomic
// transactions, a live view attached to a host surface, per-state undo/redo
// history, and a serialization format for moving state across document
// swaps.
//
// The engine deliberately stops at this boundary. It has no opinion about
// rendering, tokenization, or input handling; opaque extension values carry
// whatever the host's ecosystem supplies for those concerns.
package engine
