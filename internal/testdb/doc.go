// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests skip when no database URL is configured, so the same test files run
// locally without a database and in CI with one. Each test body runs in a
// transaction that is always rolled back:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//	        // ...
//	    })
//	}
//
// Schema setup is left to the caller so this package stays free of store
// dependencies.
package testdb
