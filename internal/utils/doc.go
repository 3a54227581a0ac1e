// Package utils holds small helpers shared by the ratescan packages: closing
// readers with a logged error, bounded string previews for log lines, JSON
// rendering for console output, and an elapsed-time timer.
package utils
