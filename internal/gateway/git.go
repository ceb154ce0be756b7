package gateway

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Wumpf/issue-explorer/internal/domain"
)

// GitClient defines the operations needed from a local working copy.
// This allows the accumulator logic to be tested without a real git executable.
type GitClient interface {
	// Sync brings the working copy at dir up to date with the remote:
	// clone if absent, then fetch, checkout the branch and pull.
	Sync(ctx context.Context, dir, url, branch string) error

	// ListCommits returns the commits reachable from branch, oldest first.
	ListCommits(ctx context.Context, dir, branch string) ([]domain.Commit, error)

	// ListFilesAtRef returns every file path in the tree of the given commit.
	ListFilesAtRef(ctx context.Context, dir, ref string) ([]string, error)

	// ReadFileAtRef returns the raw blob content of path at the given commit.
	ReadFileAtRef(ctx context.Context, dir, ref, path string) ([]byte, error)
}

// LocalGitClient implements the GitClient interface by executing the local
// 'git' binary installed on the machine.
type LocalGitClient struct {
	logger *log.Logger
}

var _ GitClient = (*LocalGitClient)(nil)

// NewLocalGitClient creates a new instance of the local git client.
func NewLocalGitClient(logger *log.Logger) *LocalGitClient {
	return &LocalGitClient{logger: logger}
}

// run executes a git command in dir and returns its stdout. On failure the
// git stderr is surfaced verbatim.
func (c *LocalGitClient) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", args[0], dir, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure git is installed and available on your PATH", err)
	}
	return out, nil
}

// Sync implements the GitClient interface.
func (c *LocalGitClient) Sync(ctx context.Context, dir, url, branch string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); errors.Is(err, fs.ErrNotExist) {
		c.logger.Printf("Cloning %s into %q...", url, dir)
		cmd := exec.CommandContext(ctx, "git", "clone", url, dir)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("git clone of %s failed: %s", url, strings.TrimSpace(string(out)))
		}
	} else if err != nil {
		return fmt.Errorf("failed to inspect checkout dir %q: %w", dir, err)
	}

	c.logger.Printf("Updating %q to branch %s...", dir, branch)
	for _, args := range [][]string{
		{"fetch", "origin"},
		{"checkout", branch},
		{"pull", "origin", branch},
	} {
		if _, err := c.run(ctx, dir, args...); err != nil {
			return err
		}
	}
	return nil
}

// gitLogFormat keeps fields tab-separated; author names may contain most
// punctuation but never a tab.
const gitLogFormat = "%H%x09%an%x09%ad%x09%s"

// ListCommits implements the GitClient interface.
func (c *LocalGitClient) ListCommits(ctx context.Context, dir, branch string) ([]domain.Commit, error) {
	out, err := c.run(ctx, dir,
		"log", "--reverse",
		"--pretty=format:"+gitLogFormat,
		"--date=iso-strict",
		branch,
	)
	if err != nil {
		return nil, err
	}

	var commits []domain.Commit
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) < 4 {
			return nil, fmt.Errorf("unexpected git log line %q", line)
		}
		when, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit date %q: %w", parts[2], err)
		}
		commits = append(commits, domain.Commit{
			Hash:    parts[0],
			Author:  parts[1],
			When:    when,
			Subject: parts[3],
		})
	}
	return commits, nil
}

// ListFilesAtRef implements the GitClient interface.
func (c *LocalGitClient) ListFilesAtRef(ctx context.Context, dir, ref string) ([]string, error) {
	out, err := c.run(ctx, dir, "ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	files := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(files) == 1 && files[0] == "" {
		return []string{}, nil
	}
	return files, nil
}

// ReadFileAtRef implements the GitClient interface.
func (c *LocalGitClient) ReadFileAtRef(ctx context.Context, dir, ref, path string) ([]byte, error) {
	return c.run(ctx, dir, "cat-file", "blob", ref+":"+path)
}
