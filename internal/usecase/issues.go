package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Wumpf/issue-explorer/internal/domain"
	"github.com/Wumpf/issue-explorer/internal/gateway"
	"github.com/Wumpf/issue-explorer/internal/sink"
)

// IssueSummary holds the final counters and time-to-close statistics printed
// after an exploration run.
type IssueSummary struct {
	Total  int
	Open   int
	Closed int

	// MedianTimeToClose and P90TimeToClose are only meaningful when
	// Closed > 0.
	MedianTimeToClose time.Duration
	P90TimeToClose    time.Duration
}

// Explorer is the use case for exploring the issue history of a repository.
// It fetches every issue, logs the basics per issue, then reduces the set
// into open/total/closed series over time.
type Explorer struct {
	fetcher gateway.IssueFetcher
	sink    sink.Sink
	logger  *log.Logger
}

// NewExplorer creates a new Explorer instance.
func NewExplorer(fetcher gateway.IssueFetcher, s sink.Sink, logger *log.Logger) *Explorer {
	return &Explorer{fetcher: fetcher, sink: s, logger: logger}
}

// Explore performs the main business logic of the issues command.
func (e *Explorer) Explore(ctx context.Context, owner, name string) (*IssueSummary, error) {
	issues, err := e.fetcher.FetchIssues(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	e.logger.Printf("Usecase: Logging basics for %d issues...", len(issues))

	for _, issue := range issues {
		e.sink.SetTimeSeconds("time", float64(issue.CreatedAt.Unix()))
		col, known := issue.State.Color()
		if !known {
			e.logger.Printf("unknown state %q for issue #%d", issue.State, issue.Number)
		}
		e.sink.TextLog(fmt.Sprintf("issues/#%d", issue.Number), issue.Title, col, string(issue.State))
	}

	e.logger.Println("Usecase: Plotting changes over time...")
	summary := &IssueSummary{Total: len(issues)}
	for _, pt := range BuildTimeline(issues) {
		e.sink.SetTimeSeconds("time", float64(pt.Time.Unix()))
		e.sink.Scalar("plot/open", float64(pt.Open), domain.ColorPlotOpen)
		if pt.Delta == +1 {
			e.sink.Scalar("plot/total", float64(pt.Created), domain.ColorPlotTotal)
		} else {
			e.sink.Scalar("plot/closed", float64(pt.Closed), domain.ColorPlotClosed)
		}
		summary.Open = pt.Open
		summary.Closed = pt.Closed
	}

	if err := e.summarizeTimeToClose(issues, summary); err != nil {
		return nil, err
	}
	e.logger.Println("Usecase: Exploration complete.")
	return summary, nil
}

// summarizeTimeToClose computes median and p90 creation-to-closure durations
// across all closed issues.
func (e *Explorer) summarizeTimeToClose(issues []domain.Issue, summary *IssueSummary) error {
	var secs []float64
	for _, issue := range issues {
		if issue.ClosedAt != nil {
			secs = append(secs, issue.ClosedAt.Sub(issue.CreatedAt).Seconds())
		}
	}
	if len(secs) == 0 {
		return nil
	}

	median, err := stats.Median(stats.Float64Data(secs))
	if err != nil {
		return fmt.Errorf("failed to compute median time to close: %w", err)
	}
	p90, err := stats.Percentile(stats.Float64Data(secs), 90)
	if err != nil {
		return fmt.Errorf("failed to compute p90 time to close: %w", err)
	}
	summary.MedianTimeToClose = time.Duration(median * float64(time.Second))
	summary.P90TimeToClose = time.Duration(p90 * float64(time.Second))
	return nil
}
