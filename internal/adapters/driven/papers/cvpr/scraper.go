// Package cvpr scrapes the CVPR "Accepted Papers" listing into papers.
package cvpr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure Scraper implements the interface.
var _ driven.PaperScraper = (*Scraper)(nil)

// Default configuration values.
const (
	DefaultURL     = "https://cvpr.thecvf.com/Conferences/2025/AcceptedPapers"
	DefaultTimeout = 30 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// headerRows is the number of leading table rows that are not papers.
	headerRows = 2
)

var (
	sessionPattern = regexp.MustCompile(`Poster Session \d+`)
	posterPattern  = regexp.MustCompile(`Poster #(\d+)`)
	// Author names are separated by a middle dot, sometimes double-decoded as "Â·".
	authorSeparator = regexp.MustCompile(`\s+Â?·\s+`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Config holds configuration for the scraper.
type Config struct {
	// Timeout bounds the page download (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the client used for URLs.
	HTTPClient *http.Client
}

// Scraper reads the listing from a URL or a saved HTML file.
type Scraper struct {
	client *http.Client
}

// NewScraper creates a new scraper.
func NewScraper(cfg Config) *Scraper {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Scraper{client: client}
}

// Scrape fetches source when it is an http(s) URL and reads it as a file otherwise.
// An empty source means DefaultURL.
func (s *Scraper) Scrape(ctx context.Context, source string) ([]domain.Paper, error) {
	if source == "" {
		source = DefaultURL
	}

	var (
		doc  *html.Node
		base *url.URL
		err  error
	)
	if isURL(source) {
		base, err = url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		doc, err = s.fetch(ctx, source)
	} else {
		doc, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}

	papers := ParseDocument(doc, base)
	logger.Debug("cvpr: %d papers parsed from %s", len(papers), source)
	return papers, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return parseHTML(resp.Body, resp.Header.Get("Content-Type"))
}

func readFile(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseHTML(f, "")
}

// parseHTML decodes r to UTF-8 using the declared or sniffed charset.
func parseHTML(r io.Reader, contentType string) (*html.Node, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseDocument extracts papers from every table row after the two header rows.
// Rows with fewer than three cells or no title are skipped. Relative links are
// resolved against base when it is non-nil. IDs number the returned papers.
func ParseDocument(doc *html.Node, base *url.URL) []domain.Paper {
	rows := findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Tr && hasAncestor(n, atom.Table)
	})

	var papers []domain.Paper
	for i := headerRows; i < len(rows); i++ {
		cells := findAll(rows[i], func(n *html.Node) bool { return n.DataAtom == atom.Td })
		if len(cells) < 3 {
			continue
		}

		var title, link string
		if a := findFirst(cells[0], byAtom(atom.A)); a != nil {
			title = strings.TrimSpace(textContent(a))
			link = resolve(base, attr(a, "href"))
		} else if strong := findFirst(cells[0], byAtom(atom.Strong)); strong != nil {
			title = strings.TrimSpace(textContent(strong))
		} else {
			continue
		}

		var authors string
		if indented := findFirst(cells[0], hasClass("indented")); indented != nil {
			if it := findFirst(indented, byAtom(atom.I)); it != nil {
				authors = strings.TrimSpace(textContent(it))
				authors = authorSeparator.ReplaceAllString(authors, ", ")
				authors = whitespace.ReplaceAllString(authors, " ")
			}
		}

		locationText := whitespace.ReplaceAllString(strings.TrimSpace(textContent(cells[2])), " ")
		location := strings.TrimSpace(strings.SplitN(locationText, "Poster #", 2)[0])
		if m := posterPattern.FindStringSubmatch(locationText); m != nil {
			location = strings.TrimSpace(location + " Poster #" + m[1])
		}

		papers = append(papers, domain.Paper{
			ID:       len(papers),
			Title:    title,
			Authors:  authors,
			Session:  sessionPattern.FindString(textContent(cells[0])),
			Location: location,
			URL:      link,
		})
	}
	return papers
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func byAtom(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAncestor(n *html.Node, a atom.Atom) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == a {
			return true
		}
	}
	return false
}

// findAll returns matching descendants of n in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

// findFirst returns the first matching descendant of n in document order.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
