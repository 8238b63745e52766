package terminal

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	opened []string
}

func (h *fakeHost) Apps() []string { return []string{"about", "portfolio"} }
func (h *fakeHost) Owner() string  { return "Griffin" }
func (h *fakeHost) Now() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func (h *fakeHost) Open(appID string) bool {
	if appID != "about" && appID != "portfolio" {
		return false
	}
	h.opened = append(h.opened, appID)
	return true
}

func newTestTerminal() (*Terminal, *fakeHost) {
	host := &fakeHost{}
	return New(host, NewSandbox(time.Second)), host
}

func lastLine(t *testing.T, term *Terminal) Line {
	t.Helper()
	snap := term.Snapshot()
	for _, tab := range snap.Tabs {
		if tab.ID == snap.Active {
			require.NotEmpty(t, tab.Lines)
			return tab.Lines[len(tab.Lines)-1]
		}
	}
	t.Fatal("no active tab")
	return Line{}
}

func TestNewTerminalHasOneTab(t *testing.T) {
	term, _ := newTestTerminal()

	snap := term.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, snap.Tabs[0].ID, snap.Active)
	assert.Equal(t, "Tab 1", snap.Tabs[0].Title)
}

func TestTabs(t *testing.T) {
	term, _ := newTestTerminal()

	second := term.NewTab()
	assert.Equal(t, 2, second)
	assert.Equal(t, second, term.Active())

	require.NoError(t, term.Switch(1))
	assert.Equal(t, 1, term.Active())
	assert.ErrorIs(t, term.Switch(42), ErrNoTab)

	require.NoError(t, term.CloseTab(1))
	assert.Equal(t, 2, term.Active())
	assert.ErrorIs(t, term.CloseTab(1), ErrNoTab)
}

func TestClosingLastTabLeavesFreshTab(t *testing.T) {
	term, _ := newTestTerminal()
	require.NoError(t, term.Exec(context.Background(), 0, "echo hi"))

	require.NoError(t, term.CloseTab(term.Active()))

	snap := term.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Empty(t, snap.Tabs[0].Lines)
	assert.Equal(t, snap.Tabs[0].ID, snap.Active)
}

func TestExecCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		line string
		want Line
	}{
		{"echo hello  world", Line{Kind: "output", Text: "hello world"}},
		{"whoami", Line{Kind: "output", Text: "Griffin"}},
		{"date", Line{Kind: "output", Text: "Wed, 01 May 2024 12:00:00 UTC"}},
		{"ls", Line{Kind: "output", Text: "portfolio"}},
		{"open about", Line{Kind: "output", Text: "opening about"}},
		{"open nowhere", Line{Kind: "error", Text: "no such app: nowhere"}},
		{"open", Line{Kind: "error", Text: "usage: open <app>"}},
		{"calc 6 * 7", Line{Kind: "output", Text: "42"}},
		{"calc", Line{Kind: "error", Text: "usage: calc <expr>"}},
		{"rm -rf /", Line{Kind: "error", Text: "command not found: rm"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			term, _ := newTestTerminal()
			require.NoError(t, term.Exec(ctx, 0, tt.line))
			assert.Equal(t, tt.want, lastLine(t, term))
		})
	}
}

func TestExecEchoesPromptAndRecordsHistory(t *testing.T) {
	term, host := newTestTerminal()
	ctx := context.Background()

	require.NoError(t, term.Exec(ctx, 0, "open portfolio"))
	require.NoError(t, term.Exec(ctx, 0, "   "))
	require.NoError(t, term.Exec(ctx, 0, "history"))

	assert.Equal(t, []string{"portfolio"}, host.opened)

	tab := term.Snapshot().Tabs[0]
	assert.Equal(t, []string{"open portfolio", "history"}, tab.History)
	assert.Equal(t, Line{Kind: "input", Text: Prompt + " open portfolio"}, tab.Lines[0])
	assert.Equal(t, Line{Kind: "output", Text: "2  history"}, tab.Lines[len(tab.Lines)-1])
}

func TestClear(t *testing.T) {
	term, _ := newTestTerminal()
	ctx := context.Background()

	require.NoError(t, term.Exec(ctx, 0, "echo one"))
	require.NoError(t, term.Exec(ctx, 0, "clear"))

	tab := term.Snapshot().Tabs[0]
	assert.Empty(t, tab.Lines)
	assert.Len(t, tab.History, 2)
}

func TestExitClosesTab(t *testing.T) {
	term, _ := newTestTerminal()
	second := term.NewTab()

	require.NoError(t, term.Exec(context.Background(), second, "exit"))

	snap := term.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, 1, snap.Active)
}

func TestExecUnknownTab(t *testing.T) {
	term, _ := newTestTerminal()
	assert.ErrorIs(t, term.Exec(context.Background(), 9, "help"), ErrNoTab)
}

func TestScrollbackIsCapped(t *testing.T) {
	term, _ := newTestTerminal()
	ctx := context.Background()

	for i := 0; i < MaxScrollback; i++ {
		require.NoError(t, term.Exec(ctx, 0, "echo x"))
	}

	tab := term.Snapshot().Tabs[0]
	assert.Len(t, tab.Lines, MaxScrollback)
	assert.Len(t, tab.History, MaxHistory)
}

func TestLongOutputIsTruncated(t *testing.T) {
	term, _ := newTestTerminal()
	ctx := context.Background()

	require.NoError(t, term.Exec(ctx, 0, `calc "x".repeat(1 << 20)`))
	out := lastLine(t, term)
	assert.Equal(t, "output", out.Kind)
	assert.LessOrEqual(t, len(out.Text), MaxLineBytes)
	assert.True(t, strings.HasSuffix(out.Text, "…"))

	require.NoError(t, term.Exec(ctx, 0, "echo "+strings.Repeat("é", MaxLineBytes)))
	out = lastLine(t, term)
	assert.LessOrEqual(t, len(out.Text), MaxLineBytes)
	assert.True(t, utf8.ValidString(out.Text))
}

func TestSnapshotIsACopy(t *testing.T) {
	term, _ := newTestTerminal()
	require.NoError(t, term.Exec(context.Background(), 0, "echo a"))

	snap := term.Snapshot()
	snap.Tabs[0].Lines[0].Text = "mutated"

	assert.NotEqual(t, "mutated", term.Snapshot().Tabs[0].Lines[0].Text)
}

func TestReset(t *testing.T) {
	term, _ := newTestTerminal()
	term.NewTab()
	term.NewTab()

	term.Reset()

	snap := term.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, 1, snap.Active)
}

func TestSandboxEval(t *testing.T) {
	sb := NewSandbox(50 * time.Millisecond)
	ctx := context.Background()

	out, err := sb.Eval(ctx, "Math.max(3, 9) + 1")
	require.NoError(t, err)
	assert.Equal(t, "10", out)

	out, err = sb.Eval(ctx, "undefined")
	require.NoError(t, err)
	assert.Equal(t, "undefined", out)

	_, err = sb.Eval(ctx, "while (true) {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")

	_, err = sb.Eval(ctx, "throw new Error('boom')")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = sb.Eval(ctx, "require('fs')")
	assert.Error(t, err)
}

func TestSandboxContextCancel(t *testing.T) {
	sb := NewSandbox(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sb.Eval(ctx, "while (true) {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
