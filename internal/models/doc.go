// Package models defines domain entities and persistence interfaces for the juke request relay.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Track] : Song metadata resolved from the streaming service
//   - [Device] : A playback device under the owner's account
//
// 2. Persistent Entities: Database-backed models
//   - [Credential] : The queue owner's OAuth token pair, a single overwritten row
//   - [Submission] : One visitor request and its outcome, kept for duplicate
//     prevention and usage insights
//
// Persistent entities implement the Model interface providing ID generation,
// timestamps, and validation. Data access lives in the repositories package,
// whose types are shaped by what the relay actually asks of each entity
// rather than a generic CRUD contract.
package models
