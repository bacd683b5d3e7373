package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pmharris/mastodigest/pkg/digest"
	"github.com/pmharris/mastodigest/pkg/post"
)

func sampleContext() Context {
	created := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	return Context{
		Hours: 12,
		Posts: []digest.RankedPost{
			{
				Post: &post.Post{
					ID:        "1",
					URL:       "https://srv/@alice/1",
					Account:   post.Account{Acct: "alice@srv"},
					Content:   `<p>Release day! <a href="https://example.com/notes">notes</a></p>`,
					CreatedAt: created,
				},
				Score: 4.25,
			},
		},
		Boosts:       nil,
		BaseURL:      "https://srv",
		TimelineName: "home",
		Scorer:       "SimpleWeighted",
		Threshold:    "normal",
		RenderedAt:   created.Add(time.Hour),
	}
}

func TestRenderWritesHTMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	if err := Render(sampleContext(), dir, ""); err != nil {
		t.Fatalf("Render: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	page := string(html)
	for _, want := range []string{
		"Release day!",
		"https://srv/@alice/1",
		"alice@srv",
		"score 4.25",
		"https://example.com/notes",
		"No boosts met the threshold.",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("index.html missing %q", want)
		}
	}
	if strings.Contains(page, `<a href="https://example.com/notes">notes</a>`) {
		t.Error("post body must be rendered as plain text, not raw HTML")
	}
	if strings.Contains(page, "&lt;p&gt;") {
		t.Error("post body must be stripped, not escaped markup")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "digest.json"))
	if err != nil {
		t.Fatalf("read digest.json: %v", err)
	}
	var payload struct {
		Hours     int    `json:"hours"`
		Timeline  string `json:"timeline"`
		Scorer    string `json:"scorer"`
		Threshold string `json:"threshold"`
		Posts     []struct {
			ID        string  `json:"id"`
			Acct      string  `json:"acct"`
			Score     float64 `json:"score"`
			Text      string  `json:"text"`
			FirstLink string  `json:"first_link"`
		} `json:"posts"`
		Boosts []any `json:"boosts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse digest.json: %v", err)
	}
	if payload.Hours != 12 || payload.Timeline != "home" || payload.Scorer != "SimpleWeighted" {
		t.Errorf("digest.json header = %+v", payload)
	}
	if len(payload.Posts) != 1 {
		t.Fatalf("got %d posts in digest.json, want 1", len(payload.Posts))
	}
	p := payload.Posts[0]
	if p.ID != "1" || p.Acct != "alice@srv" || p.Score != 4.25 {
		t.Errorf("unexpected post entry: %+v", p)
	}
	if p.FirstLink != "https://example.com/notes" {
		t.Errorf("first_link = %q", p.FirstLink)
	}
	if strings.Contains(p.Text, "<") {
		t.Errorf("text not stripped of markup: %q", p.Text)
	}
	if len(payload.Boosts) != 0 {
		t.Errorf("got %d boosts, want 0", len(payload.Boosts))
	}
}

func TestRenderEmptyDigest(t *testing.T) {
	ctx := sampleContext()
	ctx.Posts = nil

	dir := t.TempDir()
	if err := Render(ctx, dir, ""); err != nil {
		t.Fatalf("Render: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(html), "No posts met the threshold.") {
		t.Error("empty digest must say no posts met the threshold")
	}
}

func TestRenderThemeOverride(t *testing.T) {
	theme := t.TempDir()
	tmpl := "theme says {{.TimelineName}} over {{.Hours}}h with {{len .Posts}} posts\n"
	if err := os.WriteFile(filepath.Join(theme, "index.html.tmpl"), []byte(tmpl), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}

	dir := t.TempDir()
	if err := Render(sampleContext(), dir, theme); err != nil {
		t.Fatalf("Render: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if got := string(html); got != "theme says home over 12h with 1 posts\n" {
		t.Errorf("themed output = %q", got)
	}
}

func TestRenderMissingTheme(t *testing.T) {
	err := Render(sampleContext(), t.TempDir(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for theme dir without index.html.tmpl")
	}
}
