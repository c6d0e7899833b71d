package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/jywlabs/analyst/internal/record"
)

// DuckDuckGoBaseURL is the JavaScript-free results endpoint.
const DuckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML results page.
type DuckDuckGo struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		BaseURL:   DuckDuckGoBaseURL,
		UserAgent: "Mozilla/5.0 (compatible; analyst/1.0)",
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider name.
func (d *DuckDuckGo) Name() string {
	return "DuckDuckGo Search"
}

// Search posts the query and parses result anchors and snippets.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]record.SearchHit, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.UserAgent)

	res, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("duckduckgo error %d: %s", res.StatusCode, string(b))
	}

	doc, err := html.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}
	return parseDuckDuckGo(doc, maxResults), nil
}

// parseDuckDuckGo walks the document collecting a.result__a links, each paired
// with the next .result__snippet element.
func parseDuckDuckGo(doc *html.Node, maxResults int) []record.SearchHit {
	var hits []record.SearchHit

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if maxResults > 0 && len(hits) >= maxResults && !hasClass(n, "result__snippet") {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if maxResults > 0 && len(hits) >= maxResults {
					return
				}
				hits = append(hits, record.SearchHit{
					Title: strings.TrimSpace(textOf(n)),
					URL:   resolveRedirect(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet"):
				if len(hits) > 0 && hits[len(hits)-1].Snippet == "" {
					hits[len(hits)-1].Snippet = strings.TrimSpace(textOf(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> links.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
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
