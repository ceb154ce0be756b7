package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/Wumpf/issue-explorer/internal/cache"
	"github.com/Wumpf/issue-explorer/internal/gateway"
	"github.com/Wumpf/issue-explorer/internal/usecase"
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "Streams per-commit TODO counts and commits-per-author series",
	Long: `Walks the commit history of a branch oldest-first and emits, per
commit, the total TODO count across the commit's full tree plus a running
commits-per-author counter. Per-commit counts are memoized in a JSON cache
file, so only commits new since the last run are traversed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		logger := newLogger(cmd)

		repo, _ := cmd.Flags().GetString("repo")
		branch, _ := cmd.Flags().GetString("branch")
		skipDownload, _ := cmd.Flags().GetBool("skip-download")
		checkoutDir, _ := cmd.Flags().GetString("checkout-dir")
		cacheFile, _ := cmd.Flags().GetString("cache-file")

		owner, name, err := gateway.SplitRepo(repo)
		if err != nil {
			return err
		}
		if checkoutDir == "" {
			checkoutDir = name
		}

		gitClient := gateway.NewLocalGitClient(logger)
		if skipDownload {
			fmt.Printf("Reusing existing checkout in %q...\n", checkoutDir)
		} else {
			githubGateway, err := gateway.NewGitHubGateway(accessToken(), logger)
			if err != nil {
				return fmt.Errorf("failed to create GitHub gateway: %w", err)
			}
			info, err := githubGateway.ResolveRepo(ctx, owner, name)
			if err != nil {
				return err
			}
			if branch == "" {
				branch = info.DefaultBranch
			}
			fmt.Printf("Syncing %s (branch %s) into %q...\n", info.FullName, branch, checkoutDir)
			if err := gitClient.Sync(ctx, checkoutDir, info.CloneURL, branch); err != nil {
				return err
			}
		}
		if branch == "" {
			branch = "main"
		}

		todoCache, err := cache.Load(cacheFile)
		if err != nil {
			return err
		}

		emitter, err := newSink(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Counting %q occurrences per commit on %s...\n", usecase.TodoMarker, branch)
		accumulator := usecase.NewTodoAccumulator(gitClient, todoCache, emitter, logger)
		summary, err := accumulator.Accumulate(ctx, checkoutDir, branch)
		if err != nil {
			_ = emitter.Close()
			return err
		}
		if err := emitter.Close(); err != nil {
			return err
		}
		if err := todoCache.Flush(); err != nil {
			return err
		}

		fmt.Printf("Done: %d commits (%d newly traversed, %d cached), %d TODOs at the tip.\n",
			summary.Commits, summary.CacheMisses, summary.Commits-summary.CacheMisses, summary.LatestTodos)
		return writeAuthorTable(summary.AuthorCounts)
	},
}

// writeAuthorTable prints the commits-per-author totals, busiest author first.
func writeAuthorTable(counts map[string]int) error {
	authors := make([]string, 0, len(counts))
	for author := range counts {
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool {
		if counts[authors[i]] != counts[authors[j]] {
			return counts[authors[i]] > counts[authors[j]]
		}
		return authors[i] < authors[j]
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Author", "Commits"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, author := range authors {
		data = append(data, []string{author, strconv.Itoa(counts[author])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(todosCmd)
	todosCmd.Flags().StringP("branch", "b", "", "Branch to analyze (default: the repository's default branch)")
	todosCmd.Flags().Bool("skip-download", false, "Reuse the existing checkout instead of cloning/fetching")
	todosCmd.Flags().String("checkout-dir", "", "Directory for the working copy (default: the repository name)")
	todosCmd.Flags().String("cache-file", "todo_cache.json", "Path of the persisted commit-to-TODO-count cache")
}
