// Package sink emits time-stamped scalar and text series to a visualization
// target. Emission is fire-and-forget: nothing is read back, and write
// failures surface once, at Close.
package sink

import "github.com/Wumpf/issue-explorer/internal/domain"

// Sink accepts append-only emissions against a hierarchical entity namespace
// (for example "issues/#12", "plot/open", "commit/abc1234"). Time cursors set
// via SetTimeSeconds or SetTimeSequence apply to every following emission
// until moved again.
type Sink interface {
	// SetTimeSeconds moves the named timeline cursor to an absolute time in
	// seconds since the Unix epoch.
	SetTimeSeconds(timeline string, seconds float64)

	// SetTimeSequence moves the named timeline cursor to a sequence index.
	SetTimeSequence(timeline string, index int64)

	// Scalar appends one value to the named scalar series.
	Scalar(entity string, value float64, color domain.Color)

	// TextLog appends one text entry with a severity level.
	TextLog(entity string, text string, color domain.Color, level string)

	// Close flushes the sink and reports the first emission error, if any.
	Close() error
}
