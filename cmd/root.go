// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Wumpf/issue-explorer/internal/sink"
)

var rootCmd = &cobra.Command{
	Use:   "issue-explorer",
	Short: "Visualizes issue and commit statistics of a GitHub repository.",
	Long: `issue-explorer fetches the issue and commit history of a GitHub
repository and streams derived time series (open/closed/total issue counts,
TODO counts per commit, commits per author) into a visualization stream.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Target repository in owner/name form, e.g. rerun-io/rerun (required)")
	rootCmd.PersistentFlags().String("access-token", "", "Personal access token. Generate it via GitHub 'Developer Settings'")
	rootCmd.PersistentFlags().String("save", "", "Write the emission stream to this NDJSON record file instead of the console")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	viper.SetEnvPrefix("ISSUE_EXPLORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("access-token", rootCmd.PersistentFlags().Lookup("access-token"))
}

// newLogger builds the diagnostic logger shared by all commands. Output is
// discarded unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// accessToken resolves the token from the flag, the ISSUE_EXPLORER_ACCESS_TOKEN
// environment variable, or the conventional GITHUB_TOKEN fallback.
func accessToken() string {
	if token := viper.GetString("access-token"); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// newSink builds the telemetry sink for a run: an NDJSON record file when
// --save is given, the console otherwise.
func newSink(cmd *cobra.Command) (sink.Sink, error) {
	if save, _ := cmd.Flags().GetString("save"); save != "" {
		return sink.NewRecordSink(save)
	}
	return sink.NewConsoleSink(os.Stdout), nil
}
