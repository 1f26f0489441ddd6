// Package config loads process configuration from the environment and
// resolves the optional GitHub API token.
package config

import (
	"os"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/joho/godotenv"
)

// TokenSource indicates where the token was found.
type TokenSource string

const (
	TokenSourceFlag      TokenSource = "flag"
	TokenSourceEnvGitHub TokenSource = "GITHUB_TOKEN"
	TokenSourceEnvGH     TokenSource = "GH_TOKEN"
	TokenSourceGHCLI     TokenSource = "gh-cli"
	TokenSourceNone      TokenSource = "none"
)

// Config holds the resolved process configuration.
type Config struct {
	Token       string
	TokenSource TokenSource
	Addr        string
	OutDir      string
}

// Load reads an optional .env file and the process environment.
// flagToken is the value of the --token flag and takes precedence.
func Load(flagToken string) *Config {
	_ = godotenv.Load()

	token, source := ResolveGitHubToken(flagToken)
	return &Config{
		Token:       token,
		TokenSource: source,
		Addr:        getEnv("GHRECEIPT_ADDR", ":8080"),
		OutDir:      getEnv("GHRECEIPT_OUT", "."),
	}
}

// ResolveGitHubToken attempts to find a GitHub token from multiple sources.
// Priority order:
//  1. flagToken (explicit --token flag)
//  2. GITHUB_TOKEN environment variable
//  3. GH_TOKEN environment variable
//  4. gh CLI auth (config file)
//
// A missing token is not an error: the tool runs against the
// unauthenticated, rate-limited API.
func ResolveGitHubToken(flagToken string) (string, TokenSource) {
	if flagToken != "" {
		return flagToken, TokenSourceFlag
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, TokenSourceEnvGitHub
	}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token, TokenSourceEnvGH
	}
	if token, _ := auth.TokenForHost("github.com"); token != "" {
		return token, TokenSourceGHCLI
	}
	return "", TokenSourceNone
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
