package directory

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

var (
	reLocalSplit = regexp.MustCompile(`[._\-]+`)
	reDigits     = regexp.MustCompile(`^\d+$`)

	roleAddresses = []string{
		"info@", "contact@", "webmaster@", "noreply@", "no-reply@", "support@",
		"enquiries@", "inquiries@", "communications@", "press@", "postmaster@",
		"marketing@", "admissions@", "registrar@", "helpdesk@",
	}
)

// Harvester crawls faculty pages and collects mailto links into a list of
// directory candidates.
type Harvester struct {
	settings  config.DirectorySettings
	userAgent string
	logger    *slog.Logger
}

func NewHarvester(cfg config.Config, settings config.DirectorySettings, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{settings: settings, userAgent: cfg.DirectoryUserAgent, logger: logger}
}

// Harvest visits the start URLs and follows links up to the configured
// depth. Each address is kept once, with the first name found for it.
// Cancelling ctx stops link following; pages already queued still finish.
func (h *Harvester) Harvest(ctx context.Context) ([]internal.DirectoryCandidate, error) {
	opts := []func(*colly.Collector){
		colly.MaxDepth(h.settings.MaxDepth),
	}
	if h.userAgent != "" {
		opts = append(opts, colly.UserAgent(h.userAgent))
	}
	if len(h.settings.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(h.settings.AllowedDomains...))
	}
	c := colly.NewCollector(opts...)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       time.Duration(h.settings.DelayMs) * time.Millisecond,
		RandomDelay: time.Duration(h.settings.DelayMs/2) * time.Millisecond,
	}); err != nil {
		return nil, fmt.Errorf("harvest limit: %w", err)
	}

	var mu sync.Mutex
	seen := map[string]int{}
	out := make([]internal.DirectoryCandidate, 0)

	c.OnHTML("a[href^='mailto:']", func(e *colly.HTMLElement) {
		email := util.CleanEmail(e.Attr("href"))
		if !util.ValidEmail(email) || isRoleAddress(email) {
			return
		}
		name := nearbyName(e.DOM, e.Text)
		if name == "" {
			name = NameFromEmail(email)
		}

		mu.Lock()
		defer mu.Unlock()
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = len(out)
		out = append(out, internal.DirectoryCandidate{DisplayName: name, Email: email})
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if ctx.Err() != nil {
			return
		}
		href := e.Attr("href")
		if strings.HasPrefix(strings.ToLower(href), "mailto:") || strings.HasPrefix(href, "#") {
			return
		}
		_ = e.Request.Visit(e.Request.AbsoluteURL(href))
	})

	c.OnError(func(r *colly.Response, err error) {
		h.logger.Warn("harvest page failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	for _, start := range h.settings.StartURLs {
		if ctx.Err() != nil {
			break
		}
		if err := c.Visit(start); err != nil {
			h.logger.Warn("harvest start failed", "url", start, "error", err)
		}
	}
	c.Wait()

	h.logger.Info("harvest finished", "addresses", len(out))
	return out, ctx.Err()
}

// nearbyName prefers link text that reads like a person, then the text of
// a heading inside the enclosing card or row.
func nearbyName(link *goquery.Selection, text string) string {
	text = util.CollapseSpaces(text)
	if looksLikePersonName(text) {
		return text
	}
	if link == nil {
		return ""
	}
	container := link.Closest("tr, li, article, .card, .profile, .person")
	if container.Length() == 0 {
		return ""
	}
	heading := util.CollapseSpaces(container.Find("h1, h2, h3, h4, h5, strong, .name").First().Text())
	if looksLikePersonName(heading) {
		return heading
	}
	return ""
}

func looksLikePersonName(s string) bool {
	if s == "" || strings.Contains(s, "@") {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	for _, w := range words {
		first, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}

// NameFromEmail derives a display name from an address such as
// jane.doe@college.ca, giving "Jane Doe".
func NameFromEmail(email string) string {
	if !util.ValidEmail(email) {
		return ""
	}
	parts := reLocalSplit.Split(util.LocalPart(email), -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || reDigits.MatchString(p) {
			continue
		}
		words = append(words, strings.ToUpper(p[:1])+strings.ToLower(p[1:]))
	}
	return strings.Join(words, " ")
}

func isRoleAddress(email string) bool {
	for _, prefix := range roleAddresses {
		if strings.HasPrefix(email, prefix) {
			return true
		}
	}
	return false
}
