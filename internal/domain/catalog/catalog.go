package catalog

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned for app ids the catalog does not know
var ErrNotFound = errors.New("app not found")

// Payload is the opaque content hosted inside a window body
type Payload struct {
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// App describes one launchable application
type App struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Title   string `json:"title" yaml:"title" toml:"title"`
	Icon    string `json:"icon" yaml:"icon" toml:"icon"`
	Dock    bool   `json:"dock" yaml:"dock" toml:"dock"`
	Desktop bool   `json:"desktop" yaml:"desktop" toml:"desktop"`
	Order   int    `json:"order" yaml:"order" toml:"order"`
	Content string `json:"-" yaml:"content" toml:"content"`
}

// Catalog maps app ids to their metadata and content
type Catalog struct {
	mu      sync.RWMutex
	apps    map[string]App     // Protected by mu
	content map[string]Payload // Protected by mu
	index   map[string]string  // Protected by mu; lowercased searchable text
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		apps:    make(map[string]App),
		content: make(map[string]Payload),
		index:   make(map[string]string),
	}
}

// Register adds or replaces an app and its content
func (c *Catalog) Register(app App, payload Payload) {
	text := indexText(app, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.apps[app.ID] = app
	c.content[app.ID] = payload
	c.index[app.ID] = text
}

// Has reports whether the app id is known
func (c *Catalog) Has(appID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.apps[appID]
	return ok
}

// Get returns an app's metadata
func (c *Catalog) Get(appID string) (App, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	app, ok := c.apps[appID]
	return app, ok
}

// Title returns an app's title, or its id if unknown
func (c *Catalog) Title(appID string) string {
	if app, ok := c.Get(appID); ok && app.Title != "" {
		return app.Title
	}
	return appID
}

// Content returns an app's payload
func (c *Catalog) Content(appID string) (Payload, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.content[appID]
	if !ok {
		return Payload{}, ErrNotFound
	}
	return p, nil
}

// List returns every app ordered by Order, then id
func (c *Catalog) List() []App {
	c.mu.RLock()
	defer c.mu.RUnlock()

	apps := make([]App, 0, len(c.apps))
	for _, app := range c.apps {
		apps = append(apps, app)
	}
	sortApps(apps)
	return apps
}

// Dock returns the apps pinned to the dock in display order
func (c *Catalog) Dock() []App {
	var out []App
	for _, app := range c.List() {
		if app.Dock {
			out = append(out, app)
		}
	}
	return out
}

// Len returns the number of registered apps
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.apps)
}

func sortApps(apps []App) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Order == apps[j].Order {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].Order < apps[j].Order
	})
}
