// Package auth issues and verifies the bearer tokens used by the API and
// compares login passwords against stored bcrypt hashes.
package auth
