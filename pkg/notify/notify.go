// Package notify announces finished digest runs to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Entry is one ranked post included in a digest summary.
type Entry struct {
	URL   string  `json:"url"`
	Acct  string  `json:"acct"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// Summary describes one completed digest run.
type Summary struct {
	Timeline   string  `json:"timeline"`
	Hours      int     `json:"hours"`
	Scorer     string  `json:"scorer"`
	Threshold  string  `json:"threshold"`
	PostCount  int     `json:"posts"`
	BoostCount int     `json:"boosts"`
	DigestURL  string  `json:"digest_url,omitempty"`
	Top        []Entry `json:"top"`
}

// Title is the headline used by the chat notifiers.
func (s *Summary) Title() string {
	return fmt.Sprintf("Digest ready: %d posts, %d boosts (%s timeline, past %dh)",
		s.PostCount, s.BoostCount, s.Timeline, s.Hours)
}

// Notifier delivers a digest summary to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, s *Summary) error
}

// Manager broadcasts summaries to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new notification manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a summary to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, s *Summary) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
