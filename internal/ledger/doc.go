// Package ledger persists alignment run history to a SQLite database in the
// workspace so partial failures stay inspectable after the process exits.
//
// One mutating process per workspace: writers hold a lock file next to the
// database for the life of the store, while read-only opens skip the lock
// and rely on WAL mode for concurrent reads.
package ledger
