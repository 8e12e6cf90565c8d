// Package tasks contains the request relay engine.
//
// RelayEngine turns one raw visitor submission into at most one queued track:
// it validates the input, resolves a track link or free-text query against the
// streaming service, applies the duplicate window, enqueues the track on the
// owner's active device, and records the outcome for insights. Alongside the
// outcome it fetches similar-track suggestions to show the visitor.
package tasks
