package post

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// originLinkStubs identify links that point back at Twitter mirrors.
// Matched as substrings against every outbound link href.
var originLinkStubs = []string{"nitter", "/n.respublicae.eu", "/t.co"}

const originScorePerLink = 0.4

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Account is a post's author as reported by the server.
type Account struct {
	Acct           string // "user" or "user@host"
	DisplayName    string
	Note           string // bio, HTML-ish
	FollowersCount int64  // -1 when the server hides the count
	URL            string
}

// Post is a normalized view over one fetched status. Identity and URL are
// fixed at construction; everything else derived from them is a pure
// function of the stored attributes and is cached on first use.
type Post struct {
	ID              string
	URL             string
	Account         Account
	Content         string // original HTML body
	CreatedAt       time.Time
	ReblogsCount    int
	FavouritesCount int
	RepliesCount    int
	Reblogged       bool
	Favourited      bool
	Bookmarked      bool
	IsBoost         bool // arrived as a reshare of another author's post

	plainText *string
	words     map[string]bool
	links     []string
	linksSet  bool
}

// QualifyHandle appends the default host to a bare local handle. Already
// qualified handles and the empty handle pass through unchanged.
func QualifyHandle(acct, defaultHost string) string {
	if acct == "" {
		return ""
	}
	if strings.Contains(acct, "@") {
		return acct
	}
	return acct + "@" + defaultHost
}

// QualifiedHandle returns the author handle in user@host form.
func (p *Post) QualifiedHandle(defaultHost string) string {
	return QualifyHandle(p.Account.Acct, defaultHost)
}

// PlainText strips the body markup. Unparsable markup falls back to the
// raw body, never an error.
func (p *Post) PlainText() string {
	if p.plainText != nil {
		return *p.plainText
	}
	text := p.Content
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Content)); err == nil {
		text = doc.Text()
	}
	p.plainText = &text
	return text
}

// OutboundLinks returns the hyperlink targets found in the body. Links the
// server injects as chrome (mentions, hashtags) carry class attributes and
// are skipped; so are classless anchors inside a quote-inline preview
// wrapper, which the server adds for quoted posts.
func (p *Post) OutboundLinks() []string {
	if p.linksSet {
		return p.links
	}
	p.linksSet = true

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Content))
	if err != nil {
		return nil
	}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if class, _ := a.Attr("class"); class != "" {
			return
		}
		if a.ParentsFiltered(".quote-inline").Length() > 0 {
			return
		}
		if href, ok := a.Attr("href"); ok && href != "" {
			p.links = append(p.links, href)
		}
	})
	return p.links
}

// FirstLink returns the first outbound link, or "" when the body has none.
func (p *Post) FirstLink() string {
	if links := p.OutboundLinks(); len(links) > 0 {
		return links[0]
	}
	return ""
}

// MatchesKeywords reports whether the plain text contains at least one of
// the given keywords, compared case-insensitively on word boundaries.
func (p *Post) MatchesKeywords(keywords []string) bool {
	words := p.wordSet()
	for _, kw := range keywords {
		if words[strings.ToLower(kw)] {
			return true
		}
	}
	return false
}

// CountKeywords returns how many of the given keywords appear in the text.
func (p *Post) CountKeywords(keywords []string) int {
	words := p.wordSet()
	n := 0
	for _, kw := range keywords {
		if words[strings.ToLower(kw)] {
			n++
		}
	}
	return n
}

// OriginScore estimates, in [0,1], how likely the linked content is a
// Twitter mirror: each matching outbound link adds a fixed increment,
// capped at 1. No links means 0.
func (p *Post) OriginScore() float64 {
	score := 0.0
	for _, href := range p.OutboundLinks() {
		for _, stub := range originLinkStubs {
			if strings.Contains(href, stub) {
				score += originScorePerLink
				break
			}
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func (p *Post) wordSet() map[string]bool {
	if p.words != nil {
		return p.words
	}
	p.words = make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(p.PlainText()), -1) {
		p.words[w] = true
	}
	return p.words
}
