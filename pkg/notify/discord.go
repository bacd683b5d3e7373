package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Discord sends digest summaries via a Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, summary *Summary) error {
	var lines []string
	for _, entry := range summary.Top {
		lines = append(lines, fmt.Sprintf("• [%s](%s) (%.2f)", entry.Acct, entry.URL, entry.Score))
	}

	description := fmt.Sprintf("**Scorer:** %s | **Threshold:** %s", summary.Scorer, summary.Threshold)
	if len(lines) > 0 {
		description += "\n\n" + strings.Join(lines, "\n")
	}

	embed := map[string]any{
		"title":       summary.Title(),
		"description": description,
		"color":       0x595AFF,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	if summary.DigestURL != "" {
		embed["url"] = summary.DigestURL
	}

	payload := map[string]any{
		"embeds": []map[string]any{embed},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}

	return nil
}
