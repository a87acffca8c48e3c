// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Ownership scoping lives here too: TaskStore methods take the owner ID
// and implementations must filter on it rather than check it afterwards.
package store
