package mocks

import (
	"context"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockTransactor implements store.Transactor without a database.
// fn receives a nil *sql.Tx, which the store mocks ignore in WithTx.
type MockTransactor struct {
	// Err, when set, is returned instead of running fn.
	Err   error
	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// InTx implements store.Transactor.
func (m *MockTransactor) InTx(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
