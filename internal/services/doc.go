// Package services contains clients for external HTTP APIs.
//
// SpotifyService implements [Service] against the Spotify Web API: track
// search, track lookup, queue append, similar-track recommendations, and
// device listing. All calls are
// authenticated with the queue owner's bearer token supplied by a
// [TokenSource]; a request rejected with 401 is retried exactly once after a
// forced refresh.
//
// APIClient makes raw requests against a running juke instance and backs the
// status CLI command.
package services
