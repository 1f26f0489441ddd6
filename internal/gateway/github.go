// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

// ErrUserNotFound is returned when the looked-up login does not exist.
// Every caller surfaces it (and any other fetch failure) to the user as a
// single flat lookup-failure message.
var ErrUserNotFound = errors.New("user not found")

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchUser(ctx context.Context, login string) (*domain.UserProfile, error)
	FetchRepositories(ctx context.Context, login string) ([]domain.RepositorySummary, error)
	// CountRecentCommits counts the user's commits since the given time.
	// It is best-effort: callers treat an error as "count unavailable".
	CountRecentCommits(ctx context.Context, login string, since time.Time) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        zerolog.Logger
	authenticated bool
}

// recentCommitsQuery counts commit contributions via the contributions
// collection. Only available on authenticated clients.
type recentCommitsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions githubv4.Int
		} `graphql:"contributionsCollection(from: $from)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token is allowed: the gateway then runs unauthenticated against the
// rate-limited REST API and the GraphQL commit-count variant is disabled.
func NewGitHubGateway(token string, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	g := &GitHubGateway{logger: logger}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Base:   rateLimitWaiter,
				Source: ts,
			},
		}
		g.graphqlClient = githubv4.NewClient(httpClient)
		g.authenticated = true
	}
	g.restClient = github.NewClient(httpClient)
	return g, nil
}

func (g *GitHubGateway) FetchUser(ctx context.Context, login string) (*domain.UserProfile, error) {
	g.logger.Debug().Str("login", login).Msg("fetching user profile")
	user, resp, err := g.restClient.Users.Get(ctx, login)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with REST API: %w", err)
	}
	return &domain.UserProfile{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Followers: user.GetFollowers(),
		Following: user.GetFollowing(),
		Location:  user.GetLocation(),
		CreatedAt: user.GetCreatedAt().Time,
	}, nil
}

func (g *GitHubGateway) FetchRepositories(ctx context.Context, login string) ([]domain.RepositorySummary, error) {
	g.logger.Debug().Str("login", login).Msg("fetching repositories")
	opts := &github.RepositoryListByUserOptions{
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	// A single page of up to 100 repositories is all the receipt uses.
	repos, resp, err := g.restClient.Repositories.ListByUser(ctx, login, opts)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories with REST API: %w", err)
	}

	summaries := make([]domain.RepositorySummary, 0, len(repos))
	for _, repo := range repos {
		summaries = append(summaries, domain.RepositorySummary{
			Name:      repo.GetName(),
			Stars:     repo.GetStargazersCount(),
			Forks:     repo.GetForksCount(),
			SizeKB:    repo.GetSize(),
			Language:  repo.Language,
			PushedAt:  repo.GetPushedAt().Time,
			CreatedAt: repo.GetCreatedAt().Time,
		})
	}
	g.logger.Debug().Int("count", len(summaries)).Msg("completed fetching repositories")
	return summaries, nil
}

// CountRecentCommits uses the GraphQL contributions collection when
// authenticated and falls back to a REST commit search otherwise. The two
// mechanisms can disagree; the count is decorative and never authoritative.
func (g *GitHubGateway) CountRecentCommits(ctx context.Context, login string, since time.Time) (int, error) {
	if g.authenticated && g.graphqlClient != nil {
		return g.countCommitsGraphQL(ctx, login, since)
	}
	return g.countCommitsSearch(ctx, login, since)
}

func (g *GitHubGateway) countCommitsGraphQL(ctx context.Context, login string, since time.Time) (int, error) {
	g.logger.Debug().Str("login", login).Msg("counting commits via GraphQL")
	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: since},
	}
	var q recentCommitsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for commit count: %w", err)
	}
	return int(q.User.ContributionsCollection.TotalCommitContributions), nil
}

func (g *GitHubGateway) countCommitsSearch(ctx context.Context, login string, since time.Time) (int, error) {
	g.logger.Debug().Str("login", login).Msg("counting commits via REST search")
	query := fmt.Sprintf("author:%s author-date:>=%s", login, since.Format("2006-01-02"))
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search commits with REST API: %w", err)
	}
	return result.GetTotal(), nil
}
