package timeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pmharris/mastodigest/pkg/post"
)

// timelineLimit caps how many statuses one fetch pass will page through.
const timelineLimit = 1000

const pageSize = "40"

// endpoint maps a timeline spec ("home", "local", "federated",
// "hashtag:tag", "list:id") to an API path and query.
func endpoint(timeline string) (string, url.Values, error) {
	spec := strings.ToLower(strings.TrimSpace(timeline))
	kind, arg, _ := strings.Cut(spec, ":")

	query := url.Values{}
	switch kind {
	case "home", "":
		return "/api/v1/timelines/home", query, nil
	case "local":
		query.Set("local", "true")
		return "/api/v1/timelines/public", query, nil
	case "federated":
		return "/api/v1/timelines/public", query, nil
	case "hashtag":
		if arg == "" {
			return "", nil, fmt.Errorf("hashtag timeline needs a tag, e.g. hashtag:golang")
		}
		return "/api/v1/timelines/tag/" + url.PathEscape(arg), query, nil
	case "list":
		for _, r := range arg {
			if r < '0' || r > '9' {
				return "", nil, fmt.Errorf("list timeline id must be numeric, got %q", arg)
			}
		}
		if arg == "" {
			return "", nil, fmt.Errorf("list timeline needs an id, e.g. list:4")
		}
		return "/api/v1/timelines/list/" + arg, query, nil
	}
	return "", nil, fmt.Errorf("unknown timeline %q (expected home, local, federated, hashtag:tag or list:id)", timeline)
}

// FetchPostsAndBoosts pages through the given timeline for the past hours
// and returns posts and boosts the account hasn't interacted with.
//
// Boost wrappers are unwrapped: the reshared post's attributes are used,
// not the wrapper's. Items are deduplicated by URL across pages. Posts by
// the authenticated account, posts already reblogged/favourited/
// bookmarked, and posts from accounts opting out via #nobot or #noindex
// in their bio are skipped.
func (c *Client) FetchPostsAndBoosts(ctx context.Context, hours int, timeline string) (posts, boosts []*post.Post, err error) {
	self, err := c.VerifyCredentials(ctx)
	if err != nil {
		return nil, nil, err
	}
	self = strings.ToLower(strings.TrimSpace(self))

	path, query, err := endpoint(timeline)
	if err != nil {
		return nil, nil, err
	}
	query.Set("limit", pageSize)

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	seenURLs := make(map[string]bool)
	totalSeen := 0
	next := ""

	for {
		var page []Status
		if next == "" {
			next, err = c.get(ctx, path, query, &page)
		} else {
			next, err = c.get(ctx, next, nil, &page)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("fetch timeline %s: %w", timeline, err)
		}
		if len(page) == 0 {
			break
		}

		windowDone := false
		for i := range page {
			wrapper := &page[i]
			if wrapper.CreatedAt.Before(cutoff) {
				windowDone = true
				break
			}
			totalSeen++

			st := wrapper
			boost := false
			if wrapper.Reblog != nil {
				st = wrapper.Reblog // score the boosted post, not the wrapper
				boost = true
			}

			key := st.URL
			if key == "" {
				key = st.URI
			}
			if seenURLs[key] {
				continue
			}
			if st.Reblogged || st.Favourited || st.Bookmarked {
				continue
			}
			if strings.ToLower(strings.TrimSpace(st.Account.Acct)) == self {
				continue
			}
			note := strings.ToLower(st.Account.Note)
			if strings.Contains(note, "#noindex") || strings.Contains(note, "#nobot") {
				continue
			}

			seenURLs[key] = true
			p := newPost(st, boost)
			if boost {
				boosts = append(boosts, p)
			} else {
				posts = append(posts, p)
			}
		}

		if windowDone || next == "" || totalSeen >= timelineLimit {
			break
		}
	}

	return posts, boosts, nil
}

func newPost(st *Status, boost bool) *post.Post {
	return &post.Post{
		ID:  st.ID,
		URL: st.URL,
		Account: post.Account{
			Acct:           st.Account.Acct,
			DisplayName:    st.Account.DisplayName,
			Note:           st.Account.Note,
			FollowersCount: st.Account.FollowersCount,
			URL:            st.Account.URL,
		},
		Content:         st.Content,
		CreatedAt:       st.CreatedAt,
		ReblogsCount:    st.ReblogsCount,
		FavouritesCount: st.FavouritesCount,
		RepliesCount:    st.RepliesCount,
		Reblogged:       st.Reblogged,
		Favourited:      st.Favourited,
		Bookmarked:      st.Bookmarked,
		IsBoost:         boost,
	}
}
