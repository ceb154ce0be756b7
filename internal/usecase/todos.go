package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/Wumpf/issue-explorer/internal/cache"
	"github.com/Wumpf/issue-explorer/internal/domain"
	"github.com/Wumpf/issue-explorer/internal/gateway"
	"github.com/Wumpf/issue-explorer/internal/sink"
)

// TodoMarker is the literal token counted across every file blob of a commit.
const TodoMarker = "TODO("

// TodoSummary holds the final per-run totals of the todos command.
type TodoSummary struct {
	Commits      int
	LatestTodos  int
	AuthorCounts map[string]int

	// CacheMisses counts the commits whose trees actually had to be
	// traversed in this run. A warm cache yields zero.
	CacheMisses int
}

// TodoAccumulator walks a branch oldest-first and emits, per commit, the
// total TODO-marker count across the commit's full tree plus a running
// commits-per-author counter.
//
// Full-tree traversal dominates the cost, so counts are memoized in the
// cache keyed by commit hash; commit content is immutable, which makes the
// cached value valid forever.
type TodoAccumulator struct {
	git    gateway.GitClient
	cache  *cache.TodoCache
	sink   sink.Sink
	logger *log.Logger
}

// NewTodoAccumulator creates a new TodoAccumulator instance.
func NewTodoAccumulator(git gateway.GitClient, c *cache.TodoCache, s sink.Sink, logger *log.Logger) *TodoAccumulator {
	return &TodoAccumulator{git: git, cache: c, sink: s, logger: logger}
}

// Accumulate performs the main business logic of the todos command against
// an already synced working copy. Any commit whose tree cannot be read
// aborts the whole run with the git error surfaced verbatim.
func (a *TodoAccumulator) Accumulate(ctx context.Context, dir, branch string) (*TodoSummary, error) {
	commits, err := a.git.ListCommits(ctx, dir, branch)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Usecase: Accumulating TODO counts over %d commits...", len(commits))

	summary := &TodoSummary{
		Commits:      len(commits),
		AuthorCounts: make(map[string]int),
	}
	for i, commit := range commits {
		count, ok := a.cache.Get(commit.Hash)
		if !ok {
			count, err = a.countTodos(ctx, dir, commit.Hash)
			if err != nil {
				return nil, err
			}
			a.cache.Put(commit.Hash, count)
			summary.CacheMisses++
		}
		summary.AuthorCounts[commit.Author]++
		summary.LatestTodos = count

		a.sink.SetTimeSequence("commit_index", int64(i))
		a.sink.SetTimeSeconds("time", float64(commit.When.Unix()))
		a.sink.Scalar("plot/todos", float64(count), domain.ColorTodo)
		a.sink.Scalar("authors/"+commit.Author, float64(summary.AuthorCounts[commit.Author]), domain.AuthorColor(commit.Author))
		a.sink.TextLog("commit/"+commit.ShortHash(), commit.Subject, domain.AuthorColor(commit.Author), "info")
	}

	a.logger.Printf("Usecase: Accumulation complete (%d tree traversals).", summary.CacheMisses)
	return summary, nil
}

// countTodos counts non-overlapping marker occurrences across every file
// blob reachable from the commit's tree. Counting happens on raw bytes, so
// content that does not decode as text is simply inert.
func (a *TodoAccumulator) countTodos(ctx context.Context, dir, hash string) (int, error) {
	files, err := a.git.ListFilesAtRef(ctx, dir, hash)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range files {
		content, err := a.git.ReadFileAtRef(ctx, dir, hash, path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %q at %s: %w", path, hash, err)
		}
		total += bytes.Count(content, []byte(TodoMarker))
	}
	return total, nil
}
