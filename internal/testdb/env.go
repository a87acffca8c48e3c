package testdb

import "os"

// DatabaseURLEnvVars are checked in order for a test database URL.
var DatabaseURLEnvVars = []string{
	"TASKMANAGER_TEST_DATABASE_URL",
	"TASKMANAGER_DATABASE_URL",
	"DATABASE_URL",
}

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is set.
func GetTestDatabaseURL() string {
	for _, name := range DatabaseURLEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
