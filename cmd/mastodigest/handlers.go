package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pmharris/mastodigest/internal/config"
	"github.com/pmharris/mastodigest/internal/store"
	"github.com/pmharris/mastodigest/pkg/booster"
	"github.com/pmharris/mastodigest/pkg/digest"
	"github.com/pmharris/mastodigest/pkg/notify"
	"github.com/pmharris/mastodigest/pkg/post"
	"github.com/pmharris/mastodigest/pkg/render"
	"github.com/pmharris/mastodigest/pkg/scoring"
	"github.com/pmharris/mastodigest/pkg/server"
	"github.com/pmharris/mastodigest/pkg/timeline"
)

func loadConfig(flags runFlags) (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flags override the file.
	if flags.hours != 0 {
		cfg.Hours = flags.hours
	}
	if flags.scorer != "" {
		cfg.Scorer.Name = flags.scorer
	}
	if flags.threshold != "" {
		cfg.Scorer.Threshold = flags.threshold
	}
	if flags.timeline != "" {
		cfg.Timeline = flags.timeline
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildScorer picks the concrete scorer: a Filtered decorator when a
// watch-list is configured, a Configured decorator when amplification
// factors are, otherwise the plain base scorer.
func buildScorer(cfg *config.Config) (scoring.Scorer, error) {
	sc := cfg.Scorer
	host := cfg.Server.Host()

	if len(sc.FilteredAccounts) > 0 {
		return scoring.NewFiltered(sc.Name, host, sc.FilteredAccounts, sc.Keywords, sc.FilteredBoost)
	}
	if len(sc.AmplifyAccounts) > 0 {
		return scoring.NewConfigured(sc.Name, host, sc.AmplifyAccounts)
	}
	return scoring.New(sc.Name)
}

// fetchBatch pulls the raw timeline. Without a token only public hashtag
// timelines are reachable, through the server's RSS feed.
func fetchBatch(ctx context.Context, cfg *config.Config) (posts, boosts []*post.Post, err error) {
	if cfg.Server.Token == "" {
		kind, tag, _ := strings.Cut(strings.ToLower(cfg.Timeline), ":")
		if kind != "hashtag" || tag == "" {
			return nil, nil, fmt.Errorf("no access token configured: only hashtag timelines can be fetched unauthenticated")
		}
		posts, err = timeline.FetchHashtagRSS(ctx, cfg.Server.BaseURL, tag, cfg.Hours)
		return posts, nil, err
	}

	client := timeline.NewClient(cfg.Server.BaseURL, cfg.Server.Token)
	return client.FetchPostsAndBoosts(ctx, cfg.Hours, cfg.Timeline)
}

func curate(ctx context.Context, cfg *config.Config) (*digest.Digest, scoring.Scorer, scoring.Threshold, error) {
	scorer, err := buildScorer(cfg)
	if err != nil {
		return nil, nil, 0, err
	}
	threshold, err := scoring.ThresholdFromName(cfg.Scorer.Threshold)
	if err != nil {
		return nil, nil, 0, err
	}

	fmt.Fprintf(os.Stderr, "building digest from the past %d hours of %s...\n", cfg.Hours, cfg.Timeline)
	posts, boosts, err := fetchBatch(ctx, cfg)
	if err != nil {
		return nil, nil, 0, err
	}
	fmt.Fprintf(os.Stderr, "  fetched %d posts, %d boosts\n", len(posts), len(boosts))

	d := digest.Curate(posts, boosts, digest.Options{
		Scorer:             scorer,
		Threshold:          threshold,
		DefaultHost:        cfg.Server.Host(),
		SuppressedAccounts: cfg.Scorer.SuppressedAccounts,
		Keywords:           cfg.Scorer.Keywords,
	})
	fmt.Fprintf(os.Stderr, "  %d posts, %d boosts met the %s threshold\n",
		len(d.Posts), len(d.Boosts), threshold.Name())
	return d, scorer, threshold, nil
}

func runDigest(flags runFlags, outputDir, theme string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Digest.OutputDir = outputDir
	}
	if theme != "" {
		cfg.Digest.ThemeDir = theme
	}

	ctx := context.Background()
	d, scorer, threshold, err := curate(ctx, cfg)
	if err != nil {
		return err
	}

	if len(d.Posts) == 0 && len(d.Boosts) == 0 {
		fmt.Fprintln(os.Stderr, "no posts or boosts met the threshold; nothing to render")
		return nil
	}

	err = render.Render(render.Context{
		Hours:        cfg.Hours,
		Posts:        d.Posts,
		Boosts:       d.Boosts,
		BaseURL:      cfg.Server.BaseURL,
		TimelineName: cfg.Timeline,
		Scorer:       scorer.Name(),
		Threshold:    threshold.Name(),
		RenderedAt:   time.Now().UTC(),
	}, cfg.Digest.OutputDir, cfg.Digest.ThemeDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "digest written to %s\n", cfg.Digest.OutputDir)

	notifyMgr := buildNotifyManager(cfg)
	if notifyMgr.HasNotifiers() {
		if err := notifyMgr.Broadcast(ctx, buildSummary(cfg, d, scorer, threshold)); err != nil {
			fmt.Fprintf(os.Stderr, "notify error: %v\n", err)
		}
	}
	return nil
}

func runBoost(flags runFlags, maxPerRun int) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if cfg.Server.Token == "" {
		return fmt.Errorf("boosting requires an access token (set MASTODON_TOKEN)")
	}
	if maxPerRun > 0 {
		cfg.Boost.MaxPerRun = maxPerRun
	}

	ctx := context.Background()
	d, _, _, err := curate(ctx, cfg)
	if err != nil {
		return err
	}
	if len(d.Posts) == 0 {
		fmt.Fprintln(os.Stderr, "no posts met the threshold; nothing to boost")
		return nil
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	client := timeline.NewClient(cfg.Server.BaseURL, cfg.Server.Token)
	b := booster.New(db, client, cfg.Server.Host(),
		cfg.Boost.PerMinute, cfg.Boost.MaxPerRun, cfg.Boost.AuthorWindow)

	boosted, err := b.Boost(ctx, d.Posts)
	fmt.Fprintf(os.Stderr, "boosted %d posts\n", boosted)
	return err
}

func runServe(port int) error {
	cfg, err := loadConfig(runFlags{})
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.HTTP.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(cfg.Digest.OutputDir, db, port)
	return srv.ListenAndServe()
}

func runScorers() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORER\tDESCRIPTION")
	fmt.Fprintln(w, "Simple\tgeometric mean of boosts and favourites")
	fmt.Fprintln(w, "SimpleWeighted\tSimple, discounted by the author's follower count")
	fmt.Fprintln(w, "ExtendedSimple\tlike Simple, with reply counts included")
	fmt.Fprintln(w, "ExtendedSimpleWeighted\tExtendedSimple, discounted by follower count")
	fmt.Fprintln(w, "Configured<base>\tany base, with per-account amplification (amplify_accounts)")
	fmt.Fprintln(w, "Filtered<base>\tany base, with a keyword-gated account watch-list (filtered_accounts)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "THRESHOLD\tPERCENTILE")
	for _, name := range scoring.ThresholdNames() {
		t, _ := scoring.ThresholdFromName(name)
		fmt.Fprintf(w, "%s\t%d\n", name, int(t))
	}
	return w.Flush()
}

func buildNotifyManager(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.Notify.Slack.WebhookURL))
	}
	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify.Discord.WebhookURL))
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers)
}

func buildSummary(cfg *config.Config, d *digest.Digest, scorer scoring.Scorer, threshold scoring.Threshold) *notify.Summary {
	var top []notify.Entry
	for _, p := range d.Posts {
		if len(top) == 5 {
			break
		}
		top = append(top, notify.Entry{
			URL:   p.URL,
			Acct:  p.Account.Acct,
			Score: p.Score,
			Text:  p.PlainText(),
		})
	}

	return &notify.Summary{
		Timeline:   cfg.Timeline,
		Hours:      cfg.Hours,
		Scorer:     scorer.Name(),
		Threshold:  threshold.Name(),
		PostCount:  len(d.Posts),
		BoostCount: len(d.Boosts),
		Top:        top,
	}
}
