package domain

import (
	"fmt"
	"strings"
)

// SortField names a task attribute a listing can be ordered by.
type SortField string

// Sortable task fields, spelled the way clients send them in sortBy.
const (
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
)

// Listing option errors. All of them wrap ErrValidation.
var (
	ErrInvalidSortField = fmt.Errorf("%w: unsupported sort field", ErrValidation)
	ErrInvalidSortOrder = fmt.Errorf("%w: sort order must be asc or desc", ErrValidation)
	ErrInvalidLimit     = fmt.Errorf("%w: limit must be a non-negative integer", ErrValidation)
	ErrInvalidSkip      = fmt.Errorf("%w: skip must be a non-negative integer", ErrValidation)
)

// IsValid reports whether f is a supported sort field.
func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDescription, SortByCompleted:
		return true
	}
	return false
}

// TaskSort orders a task listing by a single field.
type TaskSort struct {
	Field      SortField
	Descending bool
}

// ParseTaskSort parses "field" or "field:asc|desc". The direction defaults to
// ascending.
func ParseTaskSort(raw string) (*TaskSort, error) {
	field, order, hasOrder := strings.Cut(strings.TrimSpace(raw), ":")

	sort := &TaskSort{Field: SortField(field)}
	if !sort.Field.IsValid() {
		return nil, ErrInvalidSortField
	}

	if hasOrder {
		switch strings.ToLower(order) {
		case "asc":
		case "desc":
			sort.Descending = true
		default:
			return nil, ErrInvalidSortOrder
		}
	}

	return sort, nil
}

// TaskListOptions narrows and pages a listing of one owner's tasks.
// Filtering happens before sorting, sorting before Skip/Limit.
type TaskListOptions struct {
	// Completed filters on the completed flag when non-nil.
	Completed *bool
	// Sort orders the result when non-nil; otherwise creation order is used.
	Sort *TaskSort
	// Limit caps the number of tasks returned; zero means no limit.
	Limit int
	// Skip drops this many tasks from the start of the ordered result.
	Skip int
}

// Validate checks the paging and sort options.
func (o TaskListOptions) Validate() error {
	if o.Limit < 0 {
		return ErrInvalidLimit
	}
	if o.Skip < 0 {
		return ErrInvalidSkip
	}
	if o.Sort != nil && !o.Sort.Field.IsValid() {
		return ErrInvalidSortField
	}
	return nil
}
