package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/Wumpf/issue-explorer/internal/domain"
	"github.com/fatih/color"
)

// ConsoleSink renders the emission stream as colored terminal lines. It is
// the fallback target when no record file is requested: scalars print as
// "<entity> = <value>" and text logs as "[level] <entity>: <text>".
type ConsoleSink struct {
	out   io.Writer
	times map[string]float64
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a sink that writes human-readable lines to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out, times: make(map[string]float64)}
}

func (s *ConsoleSink) SetTimeSeconds(timeline string, seconds float64) {
	s.times[timeline] = seconds
}

func (s *ConsoleSink) SetTimeSequence(timeline string, index int64) {
	s.times[timeline] = float64(index)
}

func (s *ConsoleSink) Scalar(entity string, value float64, c domain.Color) {
	sprint := sprintFor(c)
	fmt.Fprintf(s.out, "%s = %s%s\n", entity, sprint(fmt.Sprintf("%g", value)), s.cursor())
}

func (s *ConsoleSink) TextLog(entity string, text string, c domain.Color, level string) {
	sprint := sprintFor(c)
	fmt.Fprintf(s.out, "[%s] %s: %s\n", level, entity, sprint(text))
}

func (s *ConsoleSink) Close() error {
	return nil
}

// cursor renders the "time" cursor as a line suffix, when set.
func (s *ConsoleSink) cursor() string {
	sec, ok := s.times["time"]
	if !ok {
		return ""
	}
	return " @ " + time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}

// sprintFor maps an RGBA series color onto the nearest terminal color. Only
// the palette actually used by the emitters needs an exact mapping; anything
// else renders with the default attributes.
func sprintFor(c domain.Color) func(a ...interface{}) string {
	switch c {
	case domain.ColorClosed, domain.ColorPlotClosed:
		return color.New(color.FgGreen).SprintFunc()
	case domain.ColorFallback, domain.ColorPlotTotal:
		return color.New(color.FgBlue).SprintFunc()
	case domain.ColorTodo:
		return color.New(color.FgYellow).SprintFunc()
	case domain.ColorOpen:
		return color.New(color.FgWhite).SprintFunc()
	default:
		return fmt.Sprint
	}
}
