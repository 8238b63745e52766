package terminal

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

const (
	// MaxScrollback caps the lines kept per tab
	MaxScrollback = 500
	// MaxLineBytes caps the size of a single printed line
	MaxLineBytes = utils.MaxLineLength
	// MaxHistory caps the commands remembered per tab
	MaxHistory = 100
	// Prompt is printed before every echoed command
	Prompt = "guest@deskfolio:~$"
)

// ErrNoTab is returned for tab ids that do not exist
var ErrNoTab = errors.New("no such tab")

// Line is one line of terminal output
type Line struct {
	Kind string `json:"kind"` // "input", "output" or "error"
	Text string `json:"text"`
}

// Tab is one shell tab
type Tab struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Lines   []Line   `json:"lines"`
	History []string `json:"history"`
}

// Snapshot is the render state of the terminal
type Snapshot struct {
	Active int   `json:"active"`
	Tabs   []Tab `json:"tabs"`
}

// Host is what the terminal can see of the desktop around it
type Host interface {
	// Apps lists launchable app ids
	Apps() []string
	// Open launches an app window; it reports false for unknown apps
	Open(appID string) bool
	// Owner is the name printed by whoami
	Owner() string
	// Now is the time printed by date
	Now() time.Time
}

// Terminal is a small tabbed command interpreter
type Terminal struct {
	mu     sync.Mutex
	host   Host
	eval   Evaluator
	tabs   []*Tab
	active int
	nextID int
}

// New creates a terminal with one empty tab
func New(host Host, eval Evaluator) *Terminal {
	t := &Terminal{host: host, eval: eval}
	t.active = t.newTab()
	return t
}

// NewTab opens a tab and makes it active
func (t *Terminal) NewTab() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = t.newTab()
	return t.active
}

// newTab must hold mu
func (t *Terminal) newTab() int {
	t.nextID++
	tab := &Tab{ID: t.nextID, Title: "Tab " + strconv.Itoa(t.nextID)}
	t.tabs = append(t.tabs, tab)
	return tab.ID
}

// CloseTab closes a tab. Closing the last tab leaves a fresh one behind.
func (t *Terminal) CloseTab(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeTab(id)
}

// closeTab must hold mu
func (t *Terminal) closeTab(id int) error {
	i := t.indexOf(id)
	if i < 0 {
		return ErrNoTab
	}
	t.tabs = append(t.tabs[:i], t.tabs[i+1:]...)

	if len(t.tabs) == 0 {
		t.active = t.newTab()
		return nil
	}
	if t.active == id {
		t.active = t.tabs[max(i-1, 0)].ID
	}
	return nil
}

// Switch makes a tab active
func (t *Terminal) Switch(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.indexOf(id) < 0 {
		return ErrNoTab
	}
	t.active = id
	return nil
}

// Active returns the active tab id
func (t *Terminal) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Snapshot returns a deep copy of every tab
func (t *Terminal) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{Active: t.active, Tabs: make([]Tab, 0, len(t.tabs))}
	for _, tab := range t.tabs {
		s.Tabs = append(s.Tabs, Tab{
			ID:      tab.ID,
			Title:   tab.Title,
			Lines:   append([]Line(nil), tab.Lines...),
			History: append([]string(nil), tab.History...),
		})
	}
	return s
}

// Reset drops every tab and starts over with a single empty one
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tabs = nil
	t.nextID = 0
	t.active = t.newTab()
}

// indexOf must hold mu
func (t *Terminal) indexOf(id int) int {
	for i, tab := range t.tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

// tab must hold mu
func (t *Terminal) tab(id int) *Tab {
	if i := t.indexOf(id); i >= 0 {
		return t.tabs[i]
	}
	return nil
}

func (tab *Tab) print(kind, text string) {
	tab.Lines = append(tab.Lines, Line{Kind: kind, Text: utils.Truncate(text, MaxLineBytes)})
	if over := len(tab.Lines) - MaxScrollback; over > 0 {
		tab.Lines = append([]Line(nil), tab.Lines[over:]...)
	}
}

func (tab *Tab) remember(line string) {
	tab.History = append(tab.History, line)
	if over := len(tab.History) - MaxHistory; over > 0 {
		tab.History = append([]string(nil), tab.History[over:]...)
	}
}
