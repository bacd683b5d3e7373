// Package render writes the curated digest to disk as HTML plus a JSON
// sidecar consumed by the serve command.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/pmharris/mastodigest/pkg/digest"
)

// Context carries everything the digest template needs.
type Context struct {
	Hours        int                 `json:"hours"`
	Posts        []digest.RankedPost `json:"-"`
	Boosts       []digest.RankedPost `json:"-"`
	BaseURL      string              `json:"base_url"`
	TimelineName string              `json:"timeline"`
	Scorer       string              `json:"scorer"`
	Threshold    string              `json:"threshold"`
	RenderedAt   time.Time           `json:"rendered_at"`
}

// item is the JSON shape of one ranked entry.
type item struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Acct      string    `json:"acct"`
	Score     float64   `json:"score"`
	Text      string    `json:"text"`
	FirstLink string    `json:"first_link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Digest of the past {{.Hours}} hours</title>
<style>
body { font-family: sans-serif; max-width: 42em; margin: 2em auto; padding: 0 1em; }
article { border-bottom: 1px solid #ddd; padding: 1em 0; }
.meta { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<h1>Digest: {{.TimelineName}} timeline, past {{.Hours}}h</h1>
<p class="meta">scorer {{.Scorer}}, threshold {{.Threshold}}, rendered {{.RenderedAt.Format "Jan 02, 2006 15:04 MST"}}</p>
<h2>Posts</h2>
{{range .Posts}}
<article>
  <p>{{.PlainText}}</p>
  <p class="meta">
    <a href="{{.URL}}">{{.Account.Acct}}</a>
    &middot; score {{printf "%.2f" .Score}}
    &middot; {{.CreatedAt.Format "Jan 02 15:04"}}
    {{with .FirstLink}}&middot; <a href="{{.}}">link</a>{{end}}
  </p>
</article>
{{else}}
<p>No posts met the threshold.</p>
{{end}}
<h2>Boosts</h2>
{{range .Boosts}}
<article>
  <p>{{.PlainText}}</p>
  <p class="meta">
    <a href="{{.URL}}">{{.Account.Acct}}</a>
    &middot; score {{printf "%.2f" .Score}}
    &middot; {{.CreatedAt.Format "Jan 02 15:04"}}
  </p>
</article>
{{else}}
<p>No boosts met the threshold.</p>
{{end}}
</body>
</html>
`

// Render writes index.html and digest.json into outputDir. When themeDir
// is non-empty its index.html.tmpl overrides the built-in template.
func Render(ctx Context, outputDir, themeDir string) error {
	tmpl, err := load(themeDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	htmlPath := filepath.Join(outputDir, "index.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", htmlPath, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, ctx); err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	return writeJSON(ctx, filepath.Join(outputDir, "digest.json"))
}

func load(themeDir string) (*template.Template, error) {
	if themeDir == "" {
		return template.Must(template.New("digest").Parse(defaultTemplate)), nil
	}
	path := filepath.Join(themeDir, "index.html.tmpl")
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("load theme %s: %w", path, err)
	}
	return tmpl, nil
}

func writeJSON(ctx Context, path string) error {
	payload := struct {
		Context
		Posts  []item `json:"posts"`
		Boosts []item `json:"boosts"`
	}{Context: ctx, Posts: toItems(ctx.Posts), Boosts: toItems(ctx.Boosts)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func toItems(posts []digest.RankedPost) []item {
	items := make([]item, len(posts))
	for i, p := range posts {
		items[i] = item{
			ID:        p.ID,
			URL:       p.URL,
			Acct:      p.Account.Acct,
			Score:     p.Score,
			Text:      p.PlainText(),
			FirstLink: p.FirstLink(),
			CreatedAt: p.CreatedAt,
		}
	}
	return items
}
