// Package domain holds the profile entity: the row keyed by the identity
// provider's user id whose Role decides which half of the application a
// user may enter.
//
// The package has no infrastructure dependencies. Repositories live in
// internal/infrastructure/sqlite.
package domain
