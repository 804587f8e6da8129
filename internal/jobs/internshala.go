// Package jobs aggregates internship listings from external job boards.
package jobs

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
	"careercatalyst/internal/types"
)

const sourceInternshala = "internshala"

// Aggregator fetches internship listings from Internshala's public
// search pages. Page failures are skipped so a partial result is
// always returned.
type Aggregator struct {
	config config.JobsConfig
	client *http.Client
	logger *errors.Logger
}

// NewAggregator creates a job aggregator from configuration
func NewAggregator(cfg config.JobsConfig, logger *errors.Logger) *Aggregator {
	return &Aggregator{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Fetch returns listings matching the role and location filters. Both
// filters are optional and empty filters fall back to a generic
// work-from-home search.
func (a *Aggregator) Fetch(ctx context.Context, role, location string) ([]types.JobListing, error) {
	searchURL := a.buildSearchURL(role, location)

	listings := []types.JobListing{}
	for page := 1; page <= a.config.MaxPages; page++ {
		pagedURL := searchURL
		if page > 1 {
			pagedURL += fmt.Sprintf("/page-%d", page)
		}

		pageListings, err := a.fetchPage(ctx, pagedURL, location)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("Skipping job listing page",
					"url", pagedURL,
					"page", page,
					"error", err.Error())
			}
			continue
		}
		listings = append(listings, pageListings...)
	}

	return listings, nil
}

// buildSearchURL mirrors Internshala's slug-based search URL scheme
func (a *Aggregator) buildSearchURL(role, location string) string {
	base := strings.TrimSuffix(a.config.BaseURL, "/") + "/internships/"
	role = slugify(role)
	location = slugify(location)

	switch {
	case location != "" && role != "":
		return base + fmt.Sprintf("%s-internship/jobs/%s", location, role)
	case location != "":
		return base + fmt.Sprintf("%s-internship", location)
	case role != "":
		return base + fmt.Sprintf("work-from-home-%s-internship", role)
	default:
		return base + "work-from-home-internship"
	}
}

func slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), "-"))
}

func (a *Aggregator) fetchPage(ctx context.Context, pageURL, location string) ([]types.JobListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeScrapeFailed, "failed to build listing request", err)
	}
	if a.config.UserAgent != "" {
		req.Header.Set("User-Agent", a.config.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeScrapeFailed, "listing request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewNetworkError(errors.ErrCodeScrapeFailed,
			fmt.Sprintf("listing request returned status %d", resp.StatusCode), nil)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeScrapeFailed, "failed to parse listing page", err)
	}

	return a.parseListings(doc, location), nil
}

// parseListings walks the document tree collecting one listing per
// internship card
func (a *Aggregator) parseListings(doc *html.Node, location string) []types.JobListing {
	var listings []types.JobListing

	for card := range findAll(doc, "div", "individual_internship") {
		listing := types.JobListing{
			Title:       textOf(findFirst(card, "div", "heading_4_5"), "N/A"),
			Company:     textOf(findFirst(card, "a", "link_display_like_text"), "N/A"),
			Location:    defaultString(location, "N/A"),
			Type:        "Internship",
			Description: textOf(findFirst(card, "div", "internship_other_details_container"), ""),
			Stipend:     textOf(findFirst(card, "span", "stipend"), ""),
			StartDate:   textOf(findFirst(card, "div", "start_immediately_desktop"), ""),
			Duration:    textOf(findFirst(card, "div", "duration"), ""),
			Source:      sourceInternshala,
		}

		if link := findFirst(card, "a", "view_detail_button"); link != nil {
			if href := attr(link, "href"); href != "" {
				listing.URL = strings.TrimSuffix(a.config.BaseURL, "/") + href
			}
		}

		listings = append(listings, listing)
	}

	return listings
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// findAll yields every element with the given tag carrying the class
func findAll(n *html.Node, tag, class string) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		var walk func(*html.Node) bool
		walk = func(node *html.Node) bool {
			if node.Type == html.ElementNode && node.Data == tag && hasClass(node, class) {
				if !yield(node) {
					return false
				}
			}
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				if !walk(child) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// findFirst returns the first element with the given tag carrying the class
func findFirst(n *html.Node, tag, class string) *html.Node {
	for node := range findAll(n, tag, class) {
		return node
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
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

// textOf collapses the whitespace-normalized text content of a node
func textOf(n *html.Node, fallback string) string {
	if n == nil {
		return fallback
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
			buf.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	text := strings.Join(strings.Fields(buf.String()), " ")
	if text == "" {
		return fallback
	}
	return text
}
