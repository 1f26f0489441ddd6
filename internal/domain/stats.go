// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// UserProfile holds the public profile data of the looked-up GitHub user.
type UserProfile struct {
	Login     string    `json:"login"`
	Name      string    `json:"name,omitempty"`
	Followers int       `json:"followers"`
	Following int       `json:"following"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RepositorySummary holds the per-repository fields the receipt is derived from.
// Language is a pointer because the API reports it as null for repositories
// without a detected primary language.
type RepositorySummary struct {
	Name      string    `json:"name"`
	Stars     int       `json:"stars"`
	Forks     int       `json:"forks"`
	SizeKB    int       `json:"size_kb"`
	Language  *string   `json:"language,omitempty"`
	PushedAt  time.Time `json:"pushed_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LanguageCount is one entry of the top-languages ranking.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Decorations are the cosmetic receipt fields. They carry no contract beyond
// being non-empty values from their fixed sets and are regenerated per lookup.
type Decorations struct {
	Cashier    string `json:"cashier"`
	Fortune    string `json:"fortune"`
	CouponCode string `json:"coupon_code"`
	OrderID    string `json:"order_id"`
	AuthCode   string `json:"auth_code"`
	CardLast4  string `json:"card_last4"`
}

// DerivedStats is the aggregated output of one lookup. It is ephemeral:
// nothing is persisted and every submission recomputes it from scratch.
type DerivedStats struct {
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Location    string    `json:"location,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalRepos  int `json:"total_repos"`
	TotalStars  int `json:"total_stars"`
	TotalForks  int `json:"total_forks"`
	TotalSizeKB int `json:"total_size_kb"`
	Followers   int `json:"followers"`
	Following   int `json:"following"`

	MostActiveDay    time.Weekday    `json:"most_active_day"`
	TopLanguages     []LanguageCount `json:"top_languages"`
	RecentPushes     int             `json:"recent_pushes"`
	Score            int             `json:"contribution_score"`
	AvgStarsPerRepo  float64         `json:"avg_stars_per_repo"`
	MedianRepoSizeKB float64         `json:"median_repo_size_kb"`

	// CommitsLast30Days is nil when the commit-count lookup was skipped or
	// failed; it is best-effort and never blocks the receipt.
	CommitsLast30Days *int `json:"commits_last_30_days,omitempty"`

	Decorations Decorations `json:"decorations"`
}

// TopLanguagesDisplay joins the ranked language names for rendering.
func (s *DerivedStats) TopLanguagesDisplay() string {
	if len(s.TopLanguages) == 0 {
		return "N/A"
	}
	names := make([]string, len(s.TopLanguages))
	for i, l := range s.TopLanguages {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}
