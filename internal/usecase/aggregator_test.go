package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUser(ctx context.Context, login string) (*domain.UserProfile, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, login string) ([]domain.RepositorySummary, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositorySummary), args.Error(1)
}

func (m *mockFetcher) CountRecentCommits(ctx context.Context, login string, since time.Time) (int, error) {
	args := m.Called(ctx, login, since)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) // a Thursday

func newTestAggregator(fetcher *mockFetcher, opts ...Option) *Aggregator {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewSource(1))),
	}
	return NewAggregator(fetcher, zerolog.Nop(), append(base, opts...)...)
}

func langPtr(s string) *string { return &s }

func TestAggregator_Lookup(t *testing.T) {
	profile := &domain.UserProfile{
		Login:     "octocat",
		Name:      "The Octocat",
		Followers: 10,
		CreatedAt: time.Date(2011, 1, 25, 0, 0, 0, 0, time.UTC),
	}
	repos := []domain.RepositorySummary{
		{Name: "alpha", Stars: 5, Forks: 1, PushedAt: fixedNow.AddDate(0, 0, -1)},
		{Name: "beta", Stars: 3, Forks: 0, PushedAt: fixedNow.AddDate(0, 0, -2)},
	}

	testCases := []struct {
		name            string
		mockUser        *domain.UserProfile
		mockUserErr     error
		mockRepos       []domain.RepositorySummary
		mockReposErr    error
		mockCommits     int
		mockCommitsErr  error
		expectError     bool
		expectedCommits *int
	}{
		{
			name:            "happy path - totals, score and commit count",
			mockUser:        profile,
			mockRepos:       repos,
			mockCommits:     12,
			expectedCommits: intPtr(12),
		},
		{
			name:        "user fetch fails - whole lookup fails",
			mockUserErr: errors.New("github api error"),
			mockRepos:   repos,
			expectError: true,
		},
		{
			name:         "repository fetch fails - whole lookup fails",
			mockUser:     profile,
			mockReposErr: errors.New("github api error"),
			expectError:  true,
		},
		{
			name:            "commit count failure is non-fatal",
			mockUser:        profile,
			mockRepos:       repos,
			mockCommitsErr:  errors.New("search unavailable"),
			expectedCommits: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchUser", mock.Anything, "octocat").Return(tc.mockUser, tc.mockUserErr)
			fetcher.On("FetchRepositories", mock.Anything, "octocat").Return(tc.mockRepos, tc.mockReposErr)
			fetcher.On("CountRecentCommits", mock.Anything, "octocat", mock.AnythingOfType("time.Time")).
				Return(tc.mockCommits, tc.mockCommitsErr).Maybe()

			aggregator := newTestAggregator(fetcher)
			stats, err := aggregator.Lookup(context.Background(), "octocat")

			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, stats)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "octocat", stats.Login)
			assert.Equal(t, "The Octocat", stats.DisplayName)
			assert.Equal(t, 2, stats.TotalRepos)
			assert.Equal(t, 8, stats.TotalStars)
			assert.Equal(t, 1, stats.TotalForks)
			assert.Equal(t, 46, stats.Score) // 8*2 + 10*3
			if tc.expectedCommits == nil {
				assert.Nil(t, stats.CommitsLast30Days)
			} else {
				require.NotNil(t, stats.CommitsLast30Days)
				assert.Equal(t, *tc.expectedCommits, *stats.CommitsLast30Days)
			}
		})
	}
}

func TestAggregator_Lookup_WithoutCommitCount(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchUser", mock.Anything, "octocat").Return(&domain.UserProfile{Login: "octocat"}, nil)
	fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]domain.RepositorySummary{}, nil)

	aggregator := newTestAggregator(fetcher, WithoutCommitCount())
	stats, err := aggregator.Lookup(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Nil(t, stats.CommitsLast30Days)
	fetcher.AssertNotCalled(t, "CountRecentCommits", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_Derive_Totals(t *testing.T) {
	testCases := []struct {
		name          string
		followers     int
		repos         []domain.RepositorySummary
		expectedStars int
		expectedForks int
		expectedSize  int
		expectedScore int
	}{
		{
			name:      "sums across repositories",
			followers: 10,
			repos: []domain.RepositorySummary{
				{Stars: 5, Forks: 1, SizeKB: 100},
				{Stars: 3, Forks: 0, SizeKB: 40},
			},
			expectedStars: 8,
			expectedForks: 1,
			expectedSize:  140,
			expectedScore: 46,
		},
		{
			name:          "empty repository list yields zero totals",
			followers:     7,
			repos:         nil,
			expectedScore: 21, // 0*2 + 7*3
		},
		{
			name:      "sums are order-independent",
			followers: 0,
			repos: []domain.RepositorySummary{
				{Stars: 3, Forks: 0, SizeKB: 40},
				{Stars: 5, Forks: 1, SizeKB: 100},
			},
			expectedStars: 8,
			expectedForks: 1,
			expectedSize:  140,
			expectedScore: 16,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			aggregator := newTestAggregator(new(mockFetcher))
			stats := aggregator.Derive(&domain.UserProfile{Login: "octocat", Followers: tc.followers}, tc.repos)

			assert.Equal(t, len(tc.repos), stats.TotalRepos)
			assert.Equal(t, tc.expectedStars, stats.TotalStars)
			assert.Equal(t, tc.expectedForks, stats.TotalForks)
			assert.Equal(t, tc.expectedSize, stats.TotalSizeKB)
			assert.Equal(t, tc.expectedScore, stats.Score)
		})
	}
}

func TestAggregator_Derive_MostActiveDay(t *testing.T) {
	// Fixed dates with known weekdays around the injected clock.
	sunday := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	thursday := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		pushes      []time.Time
		expectedDay time.Weekday
	}{
		{
			name:        "single busiest day wins",
			pushes:      []time.Time{monday, monday, tuesday},
			expectedDay: time.Monday,
		},
		{
			name:        "tie resolves to the lowest weekday index",
			pushes:      []time.Time{thursday, tuesday, tuesday, thursday},
			expectedDay: time.Tuesday,
		},
		{
			name:        "sunday beats any tie",
			pushes:      []time.Time{thursday, sunday},
			expectedDay: time.Sunday,
		},
		{
			name:        "empty input falls back to sunday",
			pushes:      nil,
			expectedDay: time.Sunday,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repos := make([]domain.RepositorySummary, len(tc.pushes))
			for i, pushedAt := range tc.pushes {
				repos[i] = domain.RepositorySummary{PushedAt: pushedAt}
			}
			aggregator := newTestAggregator(new(mockFetcher))
			stats := aggregator.Derive(&domain.UserProfile{Login: "octocat"}, repos)
			assert.Equal(t, tc.expectedDay, stats.MostActiveDay)
		})
	}
}

func TestAggregator_Derive_TopLanguages(t *testing.T) {
	testCases := []struct {
		name            string
		languages       []*string
		expected        []domain.LanguageCount
		expectedDisplay string
	}{
		{
			name:      "counts and ranks non-nil languages",
			languages: []*string{langPtr("Go"), langPtr("Rust"), langPtr("Go"), nil, langPtr("TypeScript")},
			expected: []domain.LanguageCount{
				{Name: "Go", Count: 2},
				{Name: "Rust", Count: 1},
				{Name: "TypeScript", Count: 1},
			},
			expectedDisplay: "Go, Rust, TypeScript",
		},
		{
			name: "never exceeds three entries",
			languages: []*string{
				langPtr("Go"), langPtr("Go"), langPtr("Go"),
				langPtr("Rust"), langPtr("Rust"),
				langPtr("Python"), langPtr("Python"),
				langPtr("C"),
			},
			expected: []domain.LanguageCount{
				{Name: "Go", Count: 3},
				{Name: "Rust", Count: 2},
				{Name: "Python", Count: 2},
			},
			expectedDisplay: "Go, Rust, Python",
		},
		{
			name:      "ties keep first-encountered order",
			languages: []*string{langPtr("Ruby"), langPtr("Zig"), langPtr("Ruby"), langPtr("Zig")},
			expected: []domain.LanguageCount{
				{Name: "Ruby", Count: 2},
				{Name: "Zig", Count: 2},
			},
			expectedDisplay: "Ruby, Zig",
		},
		{
			name:            "all nil languages yield an empty ranking",
			languages:       []*string{nil, nil},
			expected:        []domain.LanguageCount{},
			expectedDisplay: "N/A",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repos := make([]domain.RepositorySummary, len(tc.languages))
			for i, lang := range tc.languages {
				repos[i] = domain.RepositorySummary{Language: lang}
			}
			aggregator := newTestAggregator(new(mockFetcher))
			stats := aggregator.Derive(&domain.UserProfile{Login: "octocat"}, repos)

			assert.Equal(t, tc.expected, stats.TopLanguages)
			assert.LessOrEqual(t, len(stats.TopLanguages), 3)
			assert.Equal(t, tc.expectedDisplay, stats.TopLanguagesDisplay())
		})
	}
}

func TestAggregator_Derive_RecentPushes(t *testing.T) {
	repos := []domain.RepositorySummary{
		{PushedAt: fixedNow.AddDate(0, 0, -1)},
		{PushedAt: fixedNow.AddDate(0, 0, -29)},
		{PushedAt: fixedNow.AddDate(0, 0, -31)},
		{PushedAt: fixedNow.AddDate(0, 0, -365)},
		{PushedAt: fixedNow.AddDate(0, 0, 1)}, // future pushed_at from clock skew
	}
	aggregator := newTestAggregator(new(mockFetcher))
	stats := aggregator.Derive(&domain.UserProfile{Login: "octocat"}, repos)
	assert.Equal(t, 2, stats.RecentPushes)
}

func TestAggregator_Derive_AvgAndMedian(t *testing.T) {
	repos := []domain.RepositorySummary{
		{Stars: 5, SizeKB: 100},
		{Stars: 3, SizeKB: 300},
		{Stars: 4, SizeKB: 200},
	}
	aggregator := newTestAggregator(new(mockFetcher))
	stats := aggregator.Derive(&domain.UserProfile{Login: "octocat"}, repos)

	assert.InDelta(t, 4.0, stats.AvgStarsPerRepo, 1e-9)
	assert.InDelta(t, 200.0, stats.MedianRepoSizeKB, 1e-9)

	empty := aggregator.Derive(&domain.UserProfile{Login: "octocat"}, nil)
	assert.Zero(t, empty.AvgStarsPerRepo)
	assert.Zero(t, empty.MedianRepoSizeKB)
}

func TestAggregator_Derive_Decorations(t *testing.T) {
	profile := &domain.UserProfile{
		Login:     "octocat",
		CreatedAt: time.Date(2011, 1, 25, 0, 0, 0, 0, time.UTC),
	}
	aggregator := newTestAggregator(new(mockFetcher))
	stats := aggregator.Derive(profile, nil)

	deco := stats.Decorations
	assert.Contains(t, cashiers, deco.Cashier)
	assert.Contains(t, fortunes, deco.Fortune)
	assert.Regexp(t, "^["+couponCharset+"]{8}$", deco.CouponCode)
	assert.Regexp(t, "^[0-9A-F]{8}$", deco.OrderID)
	assert.Regexp(t, "^[0-9]{6}$", deco.AuthCode)
	assert.Equal(t, "2011", deco.CardLast4)
}

func intPtr(n int) *int { return &n }
