package cli

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

type stubLookuper struct {
	stats *domain.DerivedStats
	err   error
}

func (s *stubLookuper) Lookup(ctx context.Context, login string) (*domain.DerivedStats, error) {
	return s.stats, s.err
}

func submit(t *testing.T, m PromptModel, login string) (PromptModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(login)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(PromptModel), cmd
}

func TestPromptModel_SuccessfulLookup(t *testing.T) {
	stats := &domain.DerivedStats{Login: "octocat", DisplayName: "The Octocat"}
	m := NewPromptModel(&stubLookuper{stats: stats}, t.TempDir())

	m, cmd := submit(t, m, "octocat")
	assert.Equal(t, stageLoading, m.stage)
	require.NotNil(t, cmd)

	updated, _ := m.Update(m.lookup())
	m = updated.(PromptModel)
	assert.Equal(t, stageReceipt, m.stage)
	assert.Contains(t, m.View(), "GITHUB RECEIPT")
	assert.Contains(t, m.View(), "@octocat")
}

func TestPromptModel_FailedLookupShowsFlatError(t *testing.T) {
	m := NewPromptModel(&stubLookuper{err: errors.New("rate limited")}, t.TempDir())

	m, _ = submit(t, m, "ghost")
	updated, _ := m.Update(m.lookup())
	m = updated.(PromptModel)

	assert.Equal(t, stageError, m.stage)
	view := m.View()
	assert.Contains(t, view, `lookup failed for "ghost"`)
	// The cause is never surfaced; every failure reads the same.
	assert.NotContains(t, view, "rate limited")
}

func TestPromptModel_EmptySubmitIsIgnored(t *testing.T) {
	m := NewPromptModel(&stubLookuper{}, t.TempDir())
	m, cmd := submit(t, m, "   ")
	assert.Equal(t, stageInput, m.stage)
	assert.Nil(t, cmd)
}

func TestPromptModel_NewLookupReplacesResult(t *testing.T) {
	stats := &domain.DerivedStats{Login: "octocat"}
	m := NewPromptModel(&stubLookuper{stats: stats}, t.TempDir())

	m, _ = submit(t, m, "octocat")
	updated, _ := m.Update(m.lookup())
	m = updated.(PromptModel)
	require.Equal(t, stageReceipt, m.stage)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(PromptModel)
	assert.Equal(t, stageInput, m.stage)
	assert.Nil(t, m.stats)
	assert.Empty(t, m.input.Value())
}

func TestPromptModel_SaveWritesArtifacts(t *testing.T) {
	stats := &domain.DerivedStats{Login: "octocat", DisplayName: "The Octocat"}
	m := NewPromptModel(&stubLookuper{stats: stats}, t.TempDir())

	m, _ = submit(t, m, "octocat")
	updated, _ := m.Update(m.lookup())
	m = updated.(PromptModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(PromptModel)
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Len(t, saved.paths, 2)
}
