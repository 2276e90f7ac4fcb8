package sqlite

import "fmt"

// dsn builds the ncruces/go-sqlite3 connection string for path. WAL mode,
// foreign key enforcement, and a busy timeout are always on: the Store's
// concurrency model (spec.md §5) leans on SQLite's own write-lock
// serialization plus a bounded retry rather than any in-process locking.
// Adapted from the teacher's internal/storage/connstring.go, which builds
// the equivalent string for the same driver.
func dsn(path string, busyTimeoutMS int) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_time_format=sqlite",
		path, busyTimeoutMS,
	)
}
