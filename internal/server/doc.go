// Package server contains the HTTP surface of the relay: the public
// submission form, the owner OAuth endpoints, and the health probe, composed
// through a small router with logging and rate-limit middleware.
package server
