// Package repositories provides the persistence layer for the request relay.
//
// CredentialRepository manages the single owner credential row, overwritten in
// place on every token refresh. SubmissionRepository records visitor requests
// and answers the duplicate-window and insight queries used by the relay
// engine. Sequence numbers provide human-readable ordering for submissions and
// are generated via NextSequence.
package repositories
