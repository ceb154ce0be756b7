// Package gateway provides access to the external issue and commit sources,
// abstracting away the GitHub API clients and the local git binary.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/Wumpf/issue-explorer/internal/domain"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// RepoInfo holds the repository metadata needed before fetching anything:
// where to clone from and which branch to analyze when none was requested.
type RepoInfo struct {
	FullName      string
	DefaultBranch string
	CloneURL      string
}

// IssueFetcher defines the behavior of a gateway for fetching issue data.
type IssueFetcher interface {
	ResolveRepo(ctx context.Context, owner, name string) (*RepoInfo, error)
	FetchIssues(ctx context.Context, owner, name string) ([]domain.Issue, error)
}

// GitHubGateway is the concrete implementation of the IssueFetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

var _ IssueFetcher = (*GitHubGateway)(nil)

// issuesQuery pages through every issue of the repository, oldest first, with
// the fields the reducer and the per-issue log entries need.
type issuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number    githubv4.Int
				Title     githubv4.String
				State     githubv4.String
				CreatedAt githubv4.DateTime
				ClosedAt  githubv4.DateTime
				URL       githubv4.String `graphql:"url"`
				Author    struct {
					Login githubv4.String
				}
				Labels struct {
					Nodes []struct {
						Name githubv4.String
					}
				} `graphql:"labels(first: 20)"`
			}
		} `graphql:"issues(first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: ASC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is optional; without one, requests run unauthenticated against the
// public API and are subject to much lower rate limits.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// SplitRepo splits an "owner/name" slug into its parts.
func SplitRepo(slug string) (owner, name string, err error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected the form owner/name (e.g. rerun-io/rerun)", slug)
	}
	return parts[0], parts[1], nil
}

// ResolveRepo fetches repository metadata using the REST API.
func (g *GitHubGateway) ResolveRepo(ctx context.Context, owner, name string) (*RepoInfo, error) {
	g.logger.Printf("Resolving repository %s/%s...", owner, name)
	repo, _, err := g.restClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository %s/%s: %w", owner, name, err)
	}
	return &RepoInfo{
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		CloneURL:      repo.GetCloneURL(),
	}, nil
}

// FetchIssues fetches every issue of the repository using the GraphQL API,
// following cursor pagination until exhausted. Issues are returned in
// creation order. A record without a creation timestamp is logged and
// skipped; a null closedAt simply means the issue is still open.
func (g *GitHubGateway) FetchIssues(ctx context.Context, owner, name string) ([]domain.Issue, error) {
	g.logger.Println("Fetching issue data using GraphQL API...")
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"cursor": (*githubv4.String)(nil),
	}

	var issues []domain.Issue
	for {
		var q issuesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for issues: %w", err)
		}

		for _, node := range q.Repository.Issues.Nodes {
			if node.CreatedAt.IsZero() {
				// Required timestamp missing upstream; nothing meaningful
				// can be derived from the record, so drop it.
				g.logger.Printf("  Skipping issue #%d: missing createdAt", node.Number)
				continue
			}
			issue := domain.Issue{
				Number:    int(node.Number),
				Title:     string(node.Title),
				State:     domain.ParseState(string(node.State)),
				CreatedAt: node.CreatedAt.Time,
				Author:    string(node.Author.Login),
				URL:       string(node.URL),
			}
			if !node.ClosedAt.IsZero() {
				closedAt := node.ClosedAt.Time
				issue.ClosedAt = &closedAt
			}
			for _, label := range node.Labels.Nodes {
				issue.Labels = append(issue.Labels, string(label.Name))
			}
			issues = append(issues, issue)
		}

		if !q.Repository.Issues.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.Issues.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of issues...")
	}
	g.logger.Printf("Completed fetching %d issues.", len(issues))
	return issues, nil
}
