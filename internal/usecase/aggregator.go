// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	mstats "github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ghreceipt/ghreceipt/internal/domain"
	"github.com/ghreceipt/ghreceipt/internal/gateway"
)

const (
	recentWindowDays = 30
	topLanguageCount = 3
)

// Fixed decorative sets. Values from here carry no meaning beyond filling
// the receipt's cosmetic fields.
var (
	cashiers = []string{"MONA", "HUBOT", "SASHA", "TERRY", "PRIYA", "DANA", "FELIX", "NOOR"}

	fortunes = []string{
		"Your next commit will be bug-free.",
		"A green CI run is in your future.",
		"You will merge without conflicts.",
		"An old branch will bring new luck.",
		"Someone will star your repo today.",
		"The linter smiles upon you.",
		"Refactor now, rejoice later.",
		"A stranger will open a kind issue.",
	}

	couponCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Aggregator is the use case for deriving receipt statistics.
// It orchestrates the concurrent fetches and the pure aggregation step.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      zerolog.Logger
	now         func() time.Time
	skipCommits bool

	// rngMu guards rng: *rand.Rand is not safe for the concurrent lookups
	// the HTTP server runs.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces the wall clock. The recency window depends on "now",
// so tests inject a fixed clock here.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithRand replaces the randomness source used for the decorative fields.
func WithRand(rng *rand.Rand) Option {
	return func(a *Aggregator) { a.rng = rng }
}

// WithoutCommitCount disables the best-effort 30-day commit count fetch.
func WithoutCommitCount() Option {
	return func(a *Aggregator) { a.skipCommits = true }
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger zerolog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup fetches the user's profile and repositories concurrently and derives
// the receipt statistics. Either primary fetch failing fails the whole lookup;
// there is no partial result. The commit count rides along best-effort and its
// failure only leaves CommitsLast30Days unset.
func (a *Aggregator) Lookup(ctx context.Context, login string) (*domain.DerivedStats, error) {
	a.logger.Debug().Str("login", login).Msg("usecase: starting lookup")

	var (
		profile *domain.UserProfile
		repos   []domain.RepositorySummary
		commits *int
	)

	since := a.now().AddDate(0, 0, -recentWindowDays)
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		profile, err = a.fetcher.FetchUser(egCtx, login)
		return err
	})

	eg.Go(func() error {
		var err error
		repos, err = a.fetcher.FetchRepositories(egCtx, login)
		return err
	})

	if !a.skipCommits {
		eg.Go(func() error {
			count, err := a.fetcher.CountRecentCommits(egCtx, login, since)
			if err != nil {
				a.logger.Debug().Err(err).Msg("usecase: commit count unavailable")
				return nil
			}
			commits = &count
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("lookup for %q failed: %w", login, err)
	}
	a.logger.Debug().Str("login", login).Int("repos", len(repos)).Msg("usecase: all data fetched")

	stats := a.Derive(profile, repos)
	stats.CommitsLast30Days = commits
	return stats, nil
}

// Derive computes the receipt statistics from already-fetched records.
// It is a pure function of its inputs apart from the injected clock and the
// decorative randomness.
func (a *Aggregator) Derive(profile *domain.UserProfile, repos []domain.RepositorySummary) *domain.DerivedStats {
	now := a.now()
	stats := &domain.DerivedStats{
		Login:       profile.Login,
		DisplayName: displayName(profile),
		Location:    profile.Location,
		GeneratedAt: now,
		TotalRepos:  len(repos),
		Followers:   profile.Followers,
		Following:   profile.Following,
	}

	var weekdayHist [7]int
	cutoff := now.AddDate(0, 0, -recentWindowDays)
	for _, repo := range repos {
		stats.TotalStars += repo.Stars
		stats.TotalForks += repo.Forks
		stats.TotalSizeKB += repo.SizeKB
		weekdayHist[repo.PushedAt.Weekday()]++
		// Bounded above so a future pushed_at (clock skew) does not count.
		if repo.PushedAt.After(cutoff) && !repo.PushedAt.After(now) {
			stats.RecentPushes++
		}
	}

	// First index holding the maximum count wins, so an all-zero histogram
	// falls back to Sunday.
	stats.MostActiveDay = time.Sunday
	for day := time.Monday; day <= time.Saturday; day++ {
		if weekdayHist[day] > weekdayHist[stats.MostActiveDay] {
			stats.MostActiveDay = day
		}
	}

	stats.TopLanguages = rankLanguages(repos)
	stats.Score = stats.TotalStars*2 + profile.Followers*3
	stats.AvgStarsPerRepo = meanStars(repos)
	stats.MedianRepoSizeKB = medianSize(repos)
	stats.Decorations = a.decorate(profile)
	return stats
}

func displayName(profile *domain.UserProfile) string {
	if profile.Name != "" {
		return profile.Name
	}
	return profile.Login
}

// rankLanguages counts non-nil primary languages in input order and returns
// the top three. The sort is stable, so ties keep first-encountered order.
func rankLanguages(repos []domain.RepositorySummary) []domain.LanguageCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, repo := range repos {
		if repo.Language == nil || *repo.Language == "" {
			continue
		}
		if _, seen := counts[*repo.Language]; !seen {
			order = append(order, *repo.Language)
		}
		counts[*repo.Language]++
	}

	ranked := make([]domain.LanguageCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, domain.LanguageCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topLanguageCount {
		ranked = ranked[:topLanguageCount]
	}
	return ranked
}

func meanStars(repos []domain.RepositorySummary) float64 {
	if len(repos) == 0 {
		return 0
	}
	stars := make([]float64, len(repos))
	for i, repo := range repos {
		stars[i] = float64(repo.Stars)
	}
	mean, err := mstats.Mean(stars)
	if err != nil {
		return 0
	}
	return mean
}

func medianSize(repos []domain.RepositorySummary) float64 {
	if len(repos) == 0 {
		return 0
	}
	sizes := make([]float64, len(repos))
	for i, repo := range repos {
		sizes[i] = float64(repo.SizeKB)
	}
	median, err := mstats.Median(sizes)
	if err != nil {
		return 0
	}
	return median
}

// decorate draws the cosmetic receipt fields. CardLast4 is the one
// deterministic entry: it echoes the account-creation year.
func (a *Aggregator) decorate(profile *domain.UserProfile) domain.Decorations {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()

	coupon := make([]byte, 8)
	for i := range coupon {
		coupon[i] = couponCharset[a.rng.Intn(len(couponCharset))]
	}
	return domain.Decorations{
		Cashier:    cashiers[a.rng.Intn(len(cashiers))],
		Fortune:    fortunes[a.rng.Intn(len(fortunes))],
		CouponCode: string(coupon),
		OrderID:    strings.ToUpper(uuid.NewString()[:8]),
		AuthCode:   fmt.Sprintf("%06d", a.rng.Intn(900000)+100000),
		CardLast4:  fmt.Sprintf("%04d", profile.CreatedAt.Year()),
	}
}
