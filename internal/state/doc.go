// Package state holds the in-memory model shared by the sync loop, the input
// reader and the renderer.
//
// Three owners carry their own lock: the Registry (containers, ordering,
// selection, logs), the ViewState (panels, sort, scroll, spinners, overlay
// flags) and the ErrorSlot (the single AppError and the fatal countdown).
// No method holds more than one of these locks at a time. Store.Snapshot
// visits them one after another and returns a fully-owned copy that the
// renderer can draw from without locking.
//
// The CommandChannel and Shutdown are the only state shared without a mutex.
package state
