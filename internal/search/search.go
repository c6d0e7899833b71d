// Package search provides the web search collaborator used by the research stage.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jywlabs/analyst/internal/record"
)

// ErrNoResults is returned when every provider failed or came back empty.
var ErrNoResults = errors.New("no search results")

// DefaultMaxResults is the number of hits requested per query.
const DefaultMaxResults = 5

// Searcher returns ordered hits for a query.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]record.SearchHit, error)
}

// Query length limits: queries longer than maxQueryWords are cut to truncatedQueryWords.
const (
	maxQueryWords       = 15
	truncatedQueryWords = 12
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// OptimizeQuery truncates long queries to their first 12 words and appends
// recency unless the query already names a four-digit year.
func OptimizeQuery(query, recency string) string {
	query = strings.TrimSpace(query)
	words := strings.Fields(query)
	if len(words) > maxQueryWords {
		query = strings.Join(words[:truncatedQueryWords], " ")
	}
	if recency == "" || yearPattern.MatchString(query) {
		return query
	}
	return query + " " + recency
}

// Chain queries a primary provider and falls back to a secondary one when the
// primary errors or returns nothing. The primary receives the optimized query,
// the secondary the query as given.
type Chain struct {
	Primary   Searcher
	Secondary Searcher
	Recency   string
	Limiter   *rate.Limiter // nil means unlimited
}

// Name lists the providers in the chain.
func (c *Chain) Name() string {
	return strings.Join(c.Providers(), " + ")
}

// Providers returns the provider names in call order.
func (c *Chain) Providers() []string {
	var names []string
	for _, s := range []Searcher{c.Primary, c.Secondary} {
		if s != nil {
			names = append(names, s.Name())
		}
	}
	return names
}

// Search runs the chain. It returns ErrNoResults wrapped with the provider
// errors when nothing was found.
func (c *Chain) Search(ctx context.Context, query string, maxResults int) ([]record.SearchHit, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	log := zap.L().With(zap.String("query", query))

	var errs []error
	if c.Primary != nil {
		hits, err := c.call(ctx, c.Primary, OptimizeQuery(query, c.Recency), maxResults)
		if err == nil && len(hits) > 0 {
			return hits, nil
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Primary.Name(), err))
		}
		log.Warn("search: primary provider yielded nothing",
			zap.String("provider", c.Primary.Name()), zap.Error(err))
	}

	if c.Secondary != nil {
		hits, err := c.call(ctx, c.Secondary, query, maxResults)
		if err == nil && len(hits) > 0 {
			return hits, nil
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Secondary.Name(), err))
		}
		log.Warn("search: secondary provider yielded nothing",
			zap.String("provider", c.Secondary.Name()), zap.Error(err))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoResults, errors.Join(errs...))
	}
	return nil, ErrNoResults
}

func (c *Chain) call(ctx context.Context, s Searcher, query string, maxResults int) ([]record.SearchHit, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	hits, err := s.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}

// FormatHits renders hits for the research prompt.
func FormatHits(hits []record.SearchHit) string {
	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "RESULT %d:\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", h.Title)
		fmt.Fprintf(&sb, "Snippet: %s...\n", clip(h.Snippet, 300))
		fmt.Fprintf(&sb, "URL: %s\n", h.URL)
		sb.WriteString("---")
		if i < len(hits)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
