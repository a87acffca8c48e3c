// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, their tasks, and the options used
// to list tasks. It is independent of any storage or delivery mechanism.
package domain
