package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndLookupBoost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &Boost{
		PostID: "100",
		URL:    "https://srv/@alice/100",
		Acct:   "alice@srv",
		Score:  4.2,
	}
	if err := s.AddBoost(ctx, b); err != nil {
		t.Fatalf("AddBoost: %v", err)
	}
	if b.ID == 0 {
		t.Error("AddBoost did not set ID")
	}
	if b.BoostedAt.IsZero() {
		t.Error("AddBoost did not set BoostedAt")
	}

	ok, err := s.WasBoosted(ctx, b.URL)
	if err != nil {
		t.Fatalf("WasBoosted: %v", err)
	}
	if !ok {
		t.Error("recorded boost not found")
	}

	ok, err = s.WasBoosted(ctx, "https://srv/@alice/999")
	if err != nil {
		t.Fatalf("WasBoosted: %v", err)
	}
	if ok {
		t.Error("unknown URL reported as boosted")
	}
}

func TestAddBoostUpsertsOnURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url := "https://srv/@bob/7"
	if err := s.AddBoost(ctx, &Boost{PostID: "7", URL: url, Acct: "bob@srv", Score: 1}); err != nil {
		t.Fatalf("AddBoost: %v", err)
	}
	if err := s.AddBoost(ctx, &Boost{PostID: "7", URL: url, Acct: "bob@srv", Score: 2}); err != nil {
		t.Fatalf("AddBoost (second): %v", err)
	}

	boosts, err := s.ListBoosts(ctx, time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListBoosts: %v", err)
	}
	if len(boosts) != 1 {
		t.Fatalf("got %d rows after duplicate insert, want 1", len(boosts))
	}
	if boosts[0].Score != 2 {
		t.Errorf("score = %v, want the updated value 2", boosts[0].Score)
	}
}

func TestCountSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := []Boost{
		{PostID: "1", URL: "u1", Acct: "a", BoostedAt: now.Add(-48 * time.Hour)},
		{PostID: "2", URL: "u2", Acct: "b", BoostedAt: now.Add(-2 * time.Hour)},
		{PostID: "3", URL: "u3", Acct: "c", BoostedAt: now},
	}
	for i := range rows {
		if err := s.AddBoost(ctx, &rows[i]); err != nil {
			t.Fatalf("AddBoost: %v", err)
		}
	}

	count, err := s.CountSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRecentAuthors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	accts := []string{"old@srv", "alice@srv", "bob@srv", "alice@srv"}
	for i, acct := range accts {
		b := &Boost{
			PostID:    string(rune('a' + i)),
			URL:       "https://srv/" + acct + "/" + string(rune('0'+i)),
			Acct:      acct,
			BoostedAt: now.Add(time.Duration(i-len(accts)) * time.Minute),
		}
		if err := s.AddBoost(ctx, b); err != nil {
			t.Fatalf("AddBoost: %v", err)
		}
	}

	authors, err := s.RecentAuthors(ctx, 3)
	if err != nil {
		t.Fatalf("RecentAuthors: %v", err)
	}
	if !authors["alice@srv"] || !authors["bob@srv"] {
		t.Errorf("missing recent authors: %v", authors)
	}
	if authors["old@srv"] {
		t.Errorf("old author included beyond window: %v", authors)
	}
}

func TestListBoostsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		b := &Boost{
			PostID:    string(rune('0' + i)),
			URL:       "https://srv/@x/" + string(rune('0'+i)),
			Acct:      "x@srv",
			BoostedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AddBoost(ctx, b); err != nil {
			t.Fatalf("AddBoost: %v", err)
		}
	}

	boosts, err := s.ListBoosts(ctx, time.Time{}, 3)
	if err != nil {
		t.Fatalf("ListBoosts: %v", err)
	}
	if len(boosts) != 3 {
		t.Fatalf("got %d boosts, want 3", len(boosts))
	}
	for i := 1; i < len(boosts); i++ {
		if boosts[i].BoostedAt.After(boosts[i-1].BoostedAt) {
			t.Errorf("boosts not ordered newest first: %v then %v",
				boosts[i-1].BoostedAt, boosts[i].BoostedAt)
		}
	}

	since := now.Add(3*time.Minute - time.Second)
	recent, err := s.ListBoosts(ctx, since, 0)
	if err != nil {
		t.Fatalf("ListBoosts(since): %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d boosts since cutoff, want 2", len(recent))
	}
}
