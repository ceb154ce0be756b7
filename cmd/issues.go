// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wumpf/issue-explorer/internal/gateway"
	"github.com/Wumpf/issue-explorer/internal/usecase"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Streams issue history as open/total/closed series over time",
	Long: `Fetches every issue of the repository, logs the basics per issue
(title, state), and reduces the creation/closure events into running
open/total/closed counters plotted over time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		logger := newLogger(cmd)

		repo, _ := cmd.Flags().GetString("repo")
		owner, name, err := gateway.SplitRepo(repo)
		if err != nil {
			return err
		}

		githubGateway, err := gateway.NewGitHubGateway(accessToken(), logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}

		// Fail fast on a bad slug before paging through issues.
		info, err := githubGateway.ResolveRepo(ctx, owner, name)
		if err != nil {
			return err
		}

		emitter, err := newSink(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Querying issues of %s and logging the basics...\n", info.FullName)
		explorer := usecase.NewExplorer(githubGateway, emitter, logger)
		summary, err := explorer.Explore(ctx, owner, name)
		if err != nil {
			_ = emitter.Close()
			return err
		}
		if err := emitter.Close(); err != nil {
			return err
		}

		fmt.Printf("Done: %d issues total, %d open, %d closed.\n", summary.Total, summary.Open, summary.Closed)
		if summary.Closed > 0 {
			fmt.Printf("Time to close: median %s, p90 %s.\n", summary.MedianTimeToClose, summary.P90TimeToClose)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issuesCmd)
}
