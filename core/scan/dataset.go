package scan

import (
	"time"

	"github.com/leofalp/ratescan/core/extract"
)

// SampleSize is the number of records shown in a summary sample.
const SampleSize = 3

// Source is one page to scan. Label becomes the protocol of every record
// extracted from it. Scope, when set, is a CSS selector narrowing extraction
// to the first matching element.
type Source struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	URL   string `json:"url" yaml:"url" toml:"url"`
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
}

// Outcome describes what happened to one source.
type Outcome struct {
	Source    Source
	Strategy  extract.Strategy
	Records   int
	Addresses int
	Duration  time.Duration
	Snapshot  string
	Err       error
}

// Skipped reports whether the source produced no page.
func (o Outcome) Skipped() bool {
	return o.Err != nil
}

// Dataset is the output of one scan.
type Dataset struct {
	RunID     string
	StartedAt time.Time
	Records   []extract.Record
	Outcomes  []Outcome
}

// ProtocolCount is the number of records for one protocol label.
type ProtocolCount struct {
	Protocol string
	Count    int
}

// Summary aggregates a dataset for display.
type Summary struct {
	Protocols []ProtocolCount
	Total     int
	Sample    []extract.Record
	Skipped   []string
}

// Summary counts records per protocol in first-seen order.
func (d *Dataset) Summary() Summary {
	var s Summary
	index := make(map[string]int)
	for _, r := range d.Records {
		p := r.Protocol()
		i, ok := index[p]
		if !ok {
			i = len(s.Protocols)
			index[p] = i
			s.Protocols = append(s.Protocols, ProtocolCount{Protocol: p})
		}
		s.Protocols[i].Count++
	}
	s.Total = len(d.Records)
	s.Sample = d.Records[:min(SampleSize, len(d.Records))]
	for _, o := range d.Outcomes {
		if o.Skipped() {
			s.Skipped = append(s.Skipped, o.Source.Label)
		}
	}
	return s
}
