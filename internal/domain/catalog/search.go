package catalog

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const snippetRadius = 40

// Hit is one search result
type Hit struct {
	AppID   string `json:"app_id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	score   int
}

// Search finds apps whose title or content mentions every word of the query.
// Title matches rank above content-only matches.
func (c *Catalog) Search(query string, limit int) []Hit {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	c.mu.RLock()
	var hits []Hit
	for appID, text := range c.index {
		app := c.apps[appID]
		title := strings.ToLower(app.Title)

		score := 0
		matched := true
		for _, term := range terms {
			switch {
			case strings.Contains(title, term):
				score += 10
			case strings.Contains(text, term):
				score++
			default:
				matched = false
			}
			if !matched {
				break
			}
		}
		if !matched {
			continue
		}
		hits = append(hits, Hit{
			AppID:   appID,
			Title:   app.Title,
			Snippet: snippet(text, terms[0]),
			score:   score,
		})
	}
	c.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score == hits[j].score {
			return hits[i].AppID < hits[j].AppID
		}
		return hits[i].score > hits[j].score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// indexText builds the lowercased searchable text of an app
func indexText(app App, p Payload) string {
	body := p.Body
	switch p.ContentType {
	case "text/html":
		body = htmlText(body)
	case "text/plain", "text/markdown":
	default:
		body = ""
	}
	return strings.ToLower(strings.Join(strings.Fields(app.Title+" "+body), " "))
}

// htmlText extracts the visible text of an HTML fragment
func htmlText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, " ")
}

func snippet(text, term string) string {
	i := strings.Index(text, term)
	if i < 0 {
		return ""
	}
	start := max(i-snippetRadius, 0)
	end := min(i+len(term)+snippetRadius, len(text))
	// Avoid cutting a multi-byte rune in half
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
