// Package service contains the application use cases. It coordinates domain
// objects with the persistence interfaces defined in internal/store.
//
// UserService covers the account lifecycle and bearer token sessions and
// publishes user events. TaskService covers task CRUD; every task
// operation is scoped to the calling user's ID.
package service
