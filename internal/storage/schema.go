package storage

const schema = `
-- The 'cards' table holds one row per flashcard. The front is the card's
-- identity; interval is the card's current step on the review ladder.
CREATE TABLE IF NOT EXISTS cards (
    front TEXT PRIMARY KEY,
    back TEXT NOT NULL,
    interval INTEGER NOT NULL DEFAULT 0,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
    source_id INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- The 'sources' table tracks imported decks, either a local directory or a
-- git repository. Manually added cards have no source.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
