// Package github fetches NEWS files, commit ranges and release tags from the
// GitHub REST API and raw content host.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phpwatch/commitlog/internal/commits"
	"github.com/phpwatch/commitlog/internal/news"
	"github.com/phpwatch/commitlog/internal/version"
)

const (
	DefaultAPIURL        = "https://api.github.com/repos/php/php-src"
	DefaultRawContentURL = "https://raw.githubusercontent.com/php/php-src"
	DefaultTimeout       = 30 * time.Second

	// DefaultMaxPages caps every paged listing.
	DefaultMaxPages = 50

	comparePageSize = 250
	listPageSize    = 100
)

// StatusError is returned when the server answers with a non-success status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client talks to one repository.
type Client struct {
	httpClient    *http.Client
	apiURL        string
	rawContentURL string
	token         string
	maxPages      int
	logger        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIURL sets the repository API root, e.g. https://api.github.com/repos/php/php-src.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRawContentURL sets the raw file root, e.g. https://raw.githubusercontent.com/php/php-src.
func WithRawContentURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.rawContentURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithMaxPages caps how many pages a listing may fetch.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for php-src unless options say otherwise.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		apiURL:        DefaultAPIURL,
		rawContentURL: DefaultRawContentURL,
		maxPages:      DefaultMaxPages,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// News returns the NEWS file of the branch that carries release.
func (c *Client) News(ctx context.Context, release string) (string, error) {
	branch, err := news.Branch(release)
	if err != nil {
		return "", err
	}
	return c.NewsAt(ctx, branch)
}

// NewsAt returns the NEWS file at ref, a branch, tag or commit.
func (c *Client) NewsAt(ctx context.Context, ref string) (string, error) {
	body, err := c.get(ctx, c.rawContentURL+"/"+ref+"/NEWS")
	if err != nil {
		return "", fmt.Errorf("fetching NEWS for %s: %w", ref, err)
	}
	return string(body), nil
}

type apiCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"commit"`
}

func (a apiCommit) toCommit() commits.Commit {
	return commits.Split(a.Commit.Message, a.Commit.Author.Name, a.SHA)
}

// Compare returns the commits between two revisions, oldest first.
func (c *Client) Compare(ctx context.Context, from, to string) ([]commits.Commit, error) {
	base := c.apiURL + "/compare/" + url.PathEscape(from) + "..." + url.PathEscape(to)

	var out []commits.Commit
	for page := 1; page <= c.maxPages; page++ {
		var resp struct {
			Commits []apiCommit `json:"commits"`
		}
		if err := c.getJSON(ctx, base+"?page="+strconv.Itoa(page), &resp); err != nil {
			return nil, fmt.Errorf("comparing %s...%s: %w", from, to, err)
		}
		for _, ac := range resp.Commits {
			out = append(out, ac.toCommit())
		}
		if len(resp.Commits) < comparePageSize {
			break
		}
	}
	return out, nil
}

// CommitsSince returns commits on the default branch in [since, until],
// newest first.
func (c *Client) CommitsSince(ctx context.Context, since, until time.Time) ([]commits.Commit, error) {
	params := url.Values{}
	params.Set("since", since.Format(time.RFC3339))
	params.Set("until", until.Format(time.RFC3339))
	params.Set("per_page", strconv.Itoa(listPageSize))

	var out []commits.Commit
	err := c.paginate(ctx, c.apiURL+"/commits", params, func(data []byte) (int, error) {
		var page []apiCommit
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		for _, ac := range page {
			out = append(out, ac.toCommit())
		}
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	return out, nil
}

// Tags returns every tag name in API order.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(listPageSize))

	var out []string
	err := c.paginate(ctx, c.apiURL+"/tags", params, func(data []byte) (int, error) {
		var page []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		for _, t := range page {
			out = append(out, t.Name)
		}
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return out, nil
}

// ReleaseTags returns the release tags, newest first.
func (c *Client) ReleaseTags(ctx context.Context) ([]string, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return nil, err
	}
	tags = news.FilterReleaseTags(tags)
	news.SortTags(tags)
	return tags, nil
}

// paginate fetches list pages until one is short or maxPages is reached.
// decode returns how many items the page held.
func (c *Client) paginate(ctx context.Context, endpoint string, params url.Values, decode func([]byte) (int, error)) error {
	for page := 1; page <= c.maxPages; page++ {
		params.Set("page", strconv.Itoa(page))
		body, err := c.get(ctx, endpoint+"?"+params.Encode())
		if err != nil {
			return err
		}
		n, err := decode(body)
		if err != nil {
			return fmt.Errorf("decoding page %d: %w", page, err)
		}
		if n < listPageSize {
			return nil
		}
	}
	c.logger.Warn("page limit reached", zap.String("endpoint", endpoint), zap.Int("pages", c.maxPages))
	return nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("GET", zap.String("url", u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
