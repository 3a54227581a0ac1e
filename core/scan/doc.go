// Package scan drives the extraction engine over a list of sources.
//
// Sources are processed strictly in order. A pacing limiter spaces out
// requests; a source whose page cannot be retrieved is logged and skipped.
// The result is a [Dataset] holding every record in source order together
// with one [Outcome] per attempted source.
package scan
