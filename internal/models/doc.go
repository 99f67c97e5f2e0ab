// Package models defines domain entities for the groupscout discovery client.
//
// The package contains three categories of types:
//
// 1. Discovery results: values produced by the search backend
//   - [DiscoveredItem] : One discovered group or channel with membership state
//   - [ItemKind], [MembershipState], [Novelty] : Result classification enums
//
// 2. Accounts: values read from the actor directory
//   - [Actor] : An authenticated account capable of joining discovered items
//
// 3. Persistence: values written to session storage
//   - [Snapshot] : A completed session (query, items, counters, timestamp)
//
// All types are plain values; mutation rules (membership monotonicity, merge
// precedence) live in the session package.
package models
