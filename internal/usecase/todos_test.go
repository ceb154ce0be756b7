package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Wumpf/issue-explorer/internal/cache"
	"github.com/Wumpf/issue-explorer/internal/domain"
)

// mockGitClient is a mock implementation of the gateway.GitClient interface.
type mockGitClient struct {
	mock.Mock
}

func (m *mockGitClient) Sync(ctx context.Context, dir, url, branch string) error {
	args := m.Called(ctx, dir, url, branch)
	return args.Error(0)
}

func (m *mockGitClient) ListCommits(ctx context.Context, dir, branch string) ([]domain.Commit, error) {
	args := m.Called(ctx, dir, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockGitClient) ListFilesAtRef(ctx context.Context, dir, ref string) ([]string, error) {
	args := m.Called(ctx, dir, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGitClient) ReadFileAtRef(ctx context.Context, dir, ref, path string) ([]byte, error) {
	args := m.Called(ctx, dir, ref, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func emptyCache(t *testing.T) *cache.TodoCache {
	t.Helper()
	c, err := cache.Load(filepath.Join(t.TempDir(), "todo_cache.json"))
	require.NoError(t, err)
	return c
}

func twoCommitHistory() []domain.Commit {
	return []domain.Commit{
		{Hash: "aaaa111", Author: "alice", Subject: "initial import", When: tp("2023-01-01T00:00:00Z")},
		{Hash: "bbbb222", Author: "alice", Subject: "leave some todos", When: tp("2023-01-02T00:00:00Z")},
	}
}

func TestTodoAccumulator_Accumulate(t *testing.T) {
	git := new(mockGitClient)
	git.On("ListCommits", mock.Anything, "repo", "main").Return(twoCommitHistory(), nil)
	git.On("ListFilesAtRef", mock.Anything, "repo", "aaaa111").Return([]string{"main.go"}, nil)
	git.On("ReadFileAtRef", mock.Anything, "repo", "aaaa111", "main.go").Return([]byte("package main\n"), nil)
	git.On("ListFilesAtRef", mock.Anything, "repo", "bbbb222").Return([]string{"main.go", "todo.txt"}, nil)
	git.On("ReadFileAtRef", mock.Anything, "repo", "bbbb222", "main.go").Return([]byte("package main // TODO(alice)\n"), nil)
	// Marker occurrences count at the byte level, even mid-line.
	git.On("ReadFileAtRef", mock.Anything, "repo", "bbbb222", "todo.txt").Return([]byte("TODO( fix this\nTODO(later"), nil)

	todoCache := emptyCache(t)
	emitter := newMemorySink()
	accumulator := NewTodoAccumulator(git, todoCache, emitter, log.New(io.Discard, "", 0))

	summary, err := accumulator.Accumulate(context.Background(), "repo", "main")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Commits)
	assert.Equal(t, 2, summary.CacheMisses)
	assert.Equal(t, 3, summary.LatestTodos)
	assert.Equal(t, map[string]int{"alice": 2}, summary.AuthorCounts)

	count, ok := todoCache.Get("bbbb222")
	require.True(t, ok)
	assert.Equal(t, 3, count)

	todos := emitter.byEntity("plot/todos")
	require.Len(t, todos, 2)
	assert.Equal(t, float64(0), todos[0].value)
	assert.Equal(t, float64(3), todos[1].value)
	// Each emission carries both the sequence index and the authored time.
	assert.Equal(t, float64(1), todos[1].times["commit_index"])
	assert.Equal(t, float64(tp("2023-01-02T00:00:00Z").Unix()), todos[1].times["time"])

	// The per-author series counts commits, not TODOs.
	authorSeries := emitter.byEntity("authors/alice")
	require.Len(t, authorSeries, 2)
	assert.Equal(t, float64(2), authorSeries[1].value)

	commitLogs := emitter.byEntity("commit/bbbb222")
	require.Len(t, commitLogs, 1)
	assert.Equal(t, "leave some todos", commitLogs[0].text)

	git.AssertExpectations(t)
}

// TestTodoAccumulator_WarmCache re-runs the accumulator against a warm cache
// and checks that no tree is traversed the second time while the results
// stay identical.
func TestTodoAccumulator_WarmCache(t *testing.T) {
	todoCache := emptyCache(t)
	todoCache.Put("aaaa111", 0)
	todoCache.Put("bbbb222", 3)

	git := new(mockGitClient)
	git.On("ListCommits", mock.Anything, "repo", "main").Return(twoCommitHistory(), nil)

	emitter := newMemorySink()
	accumulator := NewTodoAccumulator(git, todoCache, emitter, log.New(io.Discard, "", 0))

	summary, err := accumulator.Accumulate(context.Background(), "repo", "main")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.CacheMisses)
	assert.Equal(t, 3, summary.LatestTodos)
	git.AssertNotCalled(t, "ListFilesAtRef", mock.Anything, mock.Anything, mock.Anything)
	git.AssertNotCalled(t, "ReadFileAtRef", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	todos := emitter.byEntity("plot/todos")
	require.Len(t, todos, 2)
	assert.Equal(t, float64(3), todos[1].value)
}

func TestTodoAccumulator_BlobReadFailureIsFatal(t *testing.T) {
	git := new(mockGitClient)
	git.On("ListCommits", mock.Anything, "repo", "main").Return(twoCommitHistory(), nil)
	git.On("ListFilesAtRef", mock.Anything, "repo", "aaaa111").Return([]string{"main.go"}, nil)
	git.On("ReadFileAtRef", mock.Anything, "repo", "aaaa111", "main.go").Return(nil, errors.New("missing blob"))

	accumulator := NewTodoAccumulator(git, emptyCache(t), newMemorySink(), log.New(io.Discard, "", 0))
	summary, err := accumulator.Accumulate(context.Background(), "repo", "main")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing blob")
	assert.Nil(t, summary)
}
