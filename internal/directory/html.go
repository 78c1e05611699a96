package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

// Renderer returns the DOM of a page after scripts have run.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

// HTMLDirectory scrapes a people-search results page. Each match of the
// card selector is one person.
type HTMLDirectory struct {
	fetcher  *Fetcher
	renderer Renderer
	settings config.DirectorySettings
}

// NewHTMLDirectory builds an HTML adapter; a nil renderer fetches raw HTML.
func NewHTMLDirectory(fetcher *Fetcher, renderer Renderer, settings config.DirectorySettings) *HTMLDirectory {
	return &HTMLDirectory{fetcher: fetcher, renderer: renderer, settings: settings}
}

func (d *HTMLDirectory) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	u, err := buildSearchURL(d.settings.URL, d.settings.QueryParam, name)
	if err != nil {
		return nil, err
	}

	var page string
	if d.renderer != nil {
		page, err = d.renderer.Render(ctx, u, d.settings.WaitSelector)
	} else {
		var body []byte
		body, err = d.fetcher.Get(ctx, u, "text/html")
		page = string(body)
	}
	if err != nil {
		return nil, err
	}
	return ParseCards(page, d.settings)
}

func (d *HTMLDirectory) Close() {
	if c, ok := d.renderer.(interface{ Close() }); ok {
		c.Close()
	}
}

// ParseCards extracts candidates from a results page.
func ParseCards(page string, s config.DirectorySettings) ([]internal.DirectoryCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse directory page: %w", err)
	}

	emailSel := fieldOr(s.Email, `a[href^="mailto:"]`)
	out := make([]internal.DirectoryCandidate, 0)
	doc.Find(s.Card).Each(func(_ int, card *goquery.Selection) {
		c := internal.DirectoryCandidate{
			DisplayName: util.CollapseSpaces(card.Find(s.Name).First().Text()),
		}
		if s.First != "" {
			c.First = util.CollapseSpaces(card.Find(s.First).First().Text())
		}
		if s.Last != "" {
			c.Last = util.CollapseSpaces(card.Find(s.Last).First().Text())
		}
		if c.DisplayName == "" {
			c.DisplayName = strings.TrimSpace(c.First + " " + c.Last)
		}
		if c.DisplayName == "" {
			return
		}

		el := card.Find(emailSel).First()
		if href, ok := el.Attr("href"); ok && strings.HasPrefix(strings.ToLower(href), "mailto:") {
			c.Email = util.CleanEmail(href)
		} else {
			c.Email = util.CleanEmail(el.Text())
		}
		out = append(out, c)
	})
	return out, nil
}
