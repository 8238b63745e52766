package catalog

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

//go:embed all:default
var defaultFS embed.FS

// manifestNames are tried in order at the catalog root
var manifestNames = []string{"catalog.yaml", "catalog.yml", "catalog.toml"}

type manifest struct {
	Apps []App `yaml:"apps" toml:"apps"`
}

// Default loads the catalog compiled into the binary
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultFS, "default")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads a manifest and the content it references from fsys.
// Apps without an explicit content path pick up the first file matching
// content/<id>.* instead.
func Load(fsys fs.FS) (*Catalog, error) {
	m, err := readManifest(fsys)
	if err != nil {
		return nil, err
	}

	policy := bluemonday.UGCPolicy()
	cat := New()
	seen := make(map[string]bool, len(m.Apps))

	for _, app := range m.Apps {
		if err := utils.ValidateAppID(app.ID); err != nil {
			return nil, fmt.Errorf("invalid app %q: %w", app.ID, err)
		}
		if seen[app.ID] {
			return nil, fmt.Errorf("duplicate app %q", app.ID)
		}
		seen[app.ID] = true

		payload, err := loadContent(fsys, app, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to load content for %s: %w", app.ID, err)
		}
		cat.Register(app, payload)
	}

	return cat, nil
}

func readManifest(fsys fs.FS) (*manifest, error) {
	for _, name := range manifestNames {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var m manifest
		if strings.HasSuffix(name, ".toml") {
			err = toml.Unmarshal(data, &m)
		} else {
			err = yaml.Unmarshal(data, &m)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("no catalog manifest found (tried %s)", strings.Join(manifestNames, ", "))
}

func loadContent(fsys fs.FS, app App, policy *bluemonday.Policy) (Payload, error) {
	file := app.Content
	if file == "" {
		matches, err := doublestar.Glob(fsys, "content/"+app.ID+".*")
		if err != nil {
			return Payload{}, err
		}
		if len(matches) == 0 {
			return Payload{ContentType: "text/plain"}, nil
		}
		sort.Strings(matches)
		file = matches[0]
	}

	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return Payload{}, err
	}

	return toPayload(file, data, policy), nil
}

// toPayload sniffs the content type and makes the body safe to embed.
// HTML, by extension or by content, is sanitized, other text is passed through and binary data is base64 encoded.
func toPayload(file string, data []byte, policy *bluemonday.Policy) Payload {
	mtype := mimetype.Detect(data)
	ext := strings.ToLower(path.Ext(file))

	switch {
	case ext == ".html", ext == ".htm", mtype.Is("text/html"):
		return Payload{ContentType: "text/html", Body: string(policy.SanitizeBytes(data))}
	case path.Ext(file) == ".md":
		return Payload{ContentType: "text/markdown", Body: string(data)}
	case strings.HasPrefix(mtype.String(), "text/"), mtype.Is("application/json"):
		return Payload{ContentType: strings.SplitN(mtype.String(), ";", 2)[0], Body: string(data)}
	default:
		return Payload{ContentType: mtype.String(), Body: base64.StdEncoding.EncodeToString(data)}
	}
}
