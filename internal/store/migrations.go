package store

const schema = `
CREATE TABLE IF NOT EXISTS boosts (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id    TEXT NOT NULL,
    url        TEXT NOT NULL UNIQUE,
    acct       TEXT NOT NULL DEFAULT '',
    score      REAL NOT NULL DEFAULT 0,
    boosted_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_boosts_acct ON boosts(acct);
CREATE INDEX IF NOT EXISTS idx_boosts_boosted_at ON boosts(boosted_at);
`
