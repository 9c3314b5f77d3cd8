// Package aggregator keeps the running parse statistics of a pipeline run.
package aggregator

// Stats counts lines that matched and lines that failed.
//
// A Stats value is owned by a single control loop: the extractor records
// into it while lines are processed and the final rendering step reads it
// once the input is exhausted. It is not safe for concurrent use.
type Stats struct {
	Parsed uint64 `json:"parsed"`
	Failed uint64 `json:"failed"`
}

// RecordParsed counts one matched line.
func (s *Stats) RecordParsed() { s.Parsed++ }

// RecordFailed counts one failed line.
func (s *Stats) RecordFailed() { s.Failed++ }

// Total returns the number of lines recorded.
func (s Stats) Total() uint64 { return s.Parsed + s.Failed }
