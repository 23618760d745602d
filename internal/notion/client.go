// Package notion implements the read-only client for the hosted content
// database: listing published pages and fetching each page's blocks.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/notedown/internal/apperr"
	"github.com/starford/notedown/internal/models"
)

// API defaults. The version header pins the wire format.
const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"

	// pageSize bounds both listing and block fetches. Pagination past the
	// first page is out of scope.
	pageSize = 100
)

// Config carries what the client needs to talk to the API.
type Config struct {
	BaseURL    string
	Token      string
	Version    string
	DatabaseID string
	Timeout    time.Duration
}

// Client issues read requests against the content API. It carries no
// decision logic: failures surface as ErrRemoteUnavailable and are never
// collapsed into an empty result, so a transient outage can not be
// mistaken for "everything unpublished".
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	version    string
	databaseID string
}

// NewClient builds a Client from config, filling in API defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      cfg.Token,
		version:    version,
		databaseID: cfg.DatabaseID,
	}
}

// ListPublished queries the database for pages with Status = "Published",
// newest first, and returns their summaries. Block content is fetched
// separately per page.
func (c *Client) ListPublished(ctx context.Context) ([]models.Page, error) {
	payload := map[string]any{
		"page_size": pageSize,
		"filter": map[string]any{
			"property": "Status",
			"status":   map[string]any{"equals": "Published"},
		},
		"sorts": []map[string]any{
			{"property": "Created time", "direction": "descending"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notion: marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	var out queryResponse
	if err := c.do(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, err
	}

	pages := make([]models.Page, 0, len(out.Results))
	for _, p := range out.Results {
		pages = append(pages, p.toModel())
	}
	return pages, nil
}

// FetchBlocks returns the ordered content blocks of one page.
func (c *Client) FetchBlocks(ctx context.Context, pageID string) ([]models.Block, error) {
	url := fmt.Sprintf("%s/v1/blocks/%s/children?page_size=%d", c.baseURL, pageID, pageSize)
	var out blocksResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}

	blocks := make([]models.Block, 0, len(out.Results))
	for _, b := range out.Results {
		blocks = append(blocks, b.toModel())
	}
	return blocks, nil
}

// do performs one API call and decodes the JSON response into out. Any
// transport error or non-2xx status wraps ErrRemoteUnavailable.
func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("notion: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperr.ErrRemoteUnavailable, method, url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", apperr.ErrRemoteUnavailable, method, url, res.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", apperr.ErrRemoteUnavailable, err)
	}
	return nil
}
