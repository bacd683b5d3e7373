// Package timeline fetches posts from a Mastodon server and exposes them
// as normalized posts for the curation pipeline.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "mastodigest/1.0"

// Status is the wire shape of one timeline item.
type Status struct {
	ID              string        `json:"id"`
	URI             string        `json:"uri"`
	URL             string        `json:"url"`
	CreatedAt       time.Time     `json:"created_at"`
	Content         string        `json:"content"`
	ReblogsCount    int           `json:"reblogs_count"`
	FavouritesCount int           `json:"favourites_count"`
	RepliesCount    int           `json:"replies_count"`
	Reblogged       bool          `json:"reblogged"`
	Favourited      bool          `json:"favourited"`
	Bookmarked      bool          `json:"bookmarked"`
	Account         StatusAccount `json:"account"`
	Reblog          *Status       `json:"reblog"`
}

// StatusAccount is the wire shape of a status author.
type StatusAccount struct {
	Acct           string `json:"acct"`
	DisplayName    string `json:"display_name"`
	Note           string `json:"note"`
	FollowersCount int64  `json:"followers_count"`
	URL            string `json:"url"`
}

// Client talks to one Mastodon server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client for the given server. An empty token limits
// the client to unauthenticated endpoints.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
	}
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Host returns the server hostname, used to qualify bare local handles.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// VerifyCredentials returns the handle the token authenticates as.
func (c *Client) VerifyCredentials(ctx context.Context) (string, error) {
	var account StatusAccount
	if _, err := c.get(ctx, "/api/v1/accounts/verify_credentials", nil, &account); err != nil {
		return "", fmt.Errorf("verify credentials: %w", err)
	}
	return account.Acct, nil
}

// Reblog boosts the status with the given id, unlisted so followers'
// timelines aren't flooded.
func (c *Client) Reblog(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/v1/statuses/%s/reblog", c.baseURL, url.PathEscape(id))
	body := strings.NewReader(url.Values{"visibility": {"unlisted"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("create reblog request %s: %w", id, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reblog %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reblog %s status %d", id, resp.StatusCode)
	}
	return nil
}

// get performs a GET against path (or a fully-qualified pagination URL),
// decodes the JSON response into out, and returns the rel="next" page URL
// from the Link header, if any.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (next string, err error) {
	endpoint := path
	if !strings.HasPrefix(path, "http") {
		endpoint = c.baseURL + path
		if len(query) > 0 {
			endpoint += "?" + query.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request %s: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// nextLink extracts the rel="next" URL from a Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}
