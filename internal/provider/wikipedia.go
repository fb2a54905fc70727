package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const (
	wikipediaSearchURL  = "https://en.wikipedia.org/w/api.php"
	wikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"
)

// WikipediaClient provides keyless background/context lookups via the
// MediaWiki search API and the REST summary endpoint.
type WikipediaClient struct {
	httpClient *http.Client
}

func NewWikipediaClient() *WikipediaClient {
	return &WikipediaClient{httpClient: &http.Client{}}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

type wikiSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Content struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Summary finds the closest article for the topic and returns its lead
// extract plus the article URL.
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (string, string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", topic)
	params.Set("srlimit", "1")
	params.Set("format", "json")

	var search wikiSearchResponse
	if err := c.getJSON(ctx, wikipediaSearchURL+"?"+params.Encode(), &search); err != nil {
		return "", "", fmt.Errorf("wikipedia search: %w", err)
	}
	if len(search.Query.Search) == 0 {
		return "", "", fmt.Errorf("wikipedia: no article found for %q", topic)
	}

	title := search.Query.Search[0].Title
	var summary wikiSummaryResponse
	if err := c.getJSON(ctx, wikipediaSummaryURL+url.PathEscape(title), &summary); err != nil {
		return "", "", fmt.Errorf("wikipedia summary: %w", err)
	}

	extract := strings.TrimSpace(summary.Extract)
	if extract == "" {
		// Fall back to the search snippet, which arrives with markup.
		extract = strings.TrimSpace(htmlTagRe.ReplaceAllString(search.Query.Search[0].Snippet, ""))
	}

	pageURL := summary.Content.Desktop.Page
	if pageURL == "" {
		pageURL = "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	}

	return extract, pageURL, nil
}

func (c *WikipediaClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "crosscheck/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
