// Package export persists extracted records.
//
// Three formats are available: an indented JSON array, a CSV table whose
// columns are the union of all record keys, and a SQLite database. File names
// are fixed (<dir>/<base>.<ext>) and overwritten on every run. A [Writer]
// runs one primary exporter, whose failure is returned, and any number of
// secondary exporters, whose failures are only logged.
package export
