// Package service holds the storage-facing rules of the voting system: account
// registration and authentication, the one-ballot-per-voter cast, result ordering
// and candidate roster changes. Every function takes the *gorm.DB it should run
// against and returns errors from internal/domain so the HTTP layer can tell
// user-fixable conditions apart from infrastructure failures.
package service
