package timeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pmharris/mastodigest/pkg/post"
)

// FetchHashtagRSS reads a hashtag timeline through the server's public RSS
// feed, which needs no access token. RSS entries carry no engagement
// counts or author stats, so the resulting posts score 0 under every
// scorer; this path is useful for keyword pre-filtering and rendering
// only.
func FetchHashtagRSS(ctx context.Context, baseURL, tag string, hours int) ([]*post.Post, error) {
	feedURL := fmt.Sprintf("%s/tags/%s.rss", strings.TrimRight(strings.TrimSpace(baseURL), "/"), tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request #%s: %w", tag, err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss #%s: %w", tag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss #%s status %d", tag, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss #%s: %w", tag, err)
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var posts []*post.Post

	for _, entry := range feed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		posts = append(posts, &post.Post{
			ID:      id,
			URL:     entry.Link,
			Content: entry.Description,
			Account: post.Account{
				FollowersCount: -1, // unknown through RSS
			},
			CreatedAt: published,
		})
	}

	return posts, nil
}
