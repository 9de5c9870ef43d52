package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mlund/cardbox/internal/domain"
	"github.com/mlund/cardbox/internal/schedule"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateFront is returned when inserting a card whose front already
// exists. Use errors.Is to check.
var ErrDuplicateFront = errors.New("cardbox: a card with this front already exists")

// DB wraps the SQL database connection holding the card table.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema exists.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertCard inserts a new card at step 0 with engine-assigned timestamps.
func (db *DB) InsertCard(front, back string) error {
	return db.insert(front, back, sql.NullInt64{})
}

// InsertSourcedCard inserts a new card belonging to an imported source.
func (db *DB) InsertSourcedCard(front, back string, sourceID int64) error {
	return db.insert(front, back, sql.NullInt64{Int64: sourceID, Valid: true})
}

func (db *DB) insert(front, back string, sourceID sql.NullInt64) error {
	_, err := db.conn.Exec(`
		INSERT INTO cards (front, back, source_id)
		VALUES (?, ?, ?)
	`, front, back, sourceID)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("failed to insert card %q: %w", front, ErrDuplicateFront)
		}
		return fmt.Errorf("failed to insert card %q: %w", front, err)
	}
	return nil
}

// isConstraintErr reports whether err is the engine's primary-key or unique
// constraint violation.
func isConstraintErr(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

// DeleteCard removes the card with the given front. Deleting a card that does
// not exist is a success.
func (db *DB) DeleteCard(front string) error {
	_, err := db.conn.Exec(`
		DELETE FROM cards
		WHERE front = ?
	`, front)
	if err != nil {
		return fmt.Errorf("failed to delete card %q: %w", front, err)
	}
	return nil
}

// AllCards retrieves every card in the engine's natural row order. Callers
// must not rely on the ordering.
func (db *DB) AllCards() ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT front, back, interval, unixepoch(created_at), unixepoch(updated_at), COALESCE(source_id, 0)
		FROM cards
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		var created, updated int64
		if err := rows.Scan(&c.Front, &c.Back, &c.StepIndex, &created, &updated, &c.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0)
		c.UpdatedAt = time.Unix(updated, 0)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows: %w", err)
	}
	return cards, nil
}

// UpdateCardStep sets the card's ladder step and resets updated_at to now.
// The step is clamped to the ladder range before writing. Updating a card
// that no longer exists is a success.
func (db *DB) UpdateCardStep(front string, stepIndex int) error {
	_, err := db.conn.Exec(`
		UPDATE cards
		SET interval = ?, updated_at = CURRENT_TIMESTAMP
		WHERE front = ?
	`, schedule.Clamp(stepIndex), front)
	if err != nil {
		return fmt.Errorf("failed to update step for card %q: %w", front, err)
	}
	return nil
}

// UpdateCardBack refreshes a sourced card's answer text without touching its
// review state.
func (db *DB) UpdateCardBack(front, back string, sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE cards
		SET back = ?
		WHERE front = ? AND source_id = ?
	`, back, front, sourceID)
	if err != nil {
		return fmt.Errorf("failed to update back for card %q: %w", front, err)
	}
	return nil
}

// Source is an imported deck location, either a local directory or a git URL.
type Source struct {
	ID          int64
	Path        string
	Kind        string
	LastScanned sql.NullTime
}

// Source kinds.
const (
	SourceLocal = "local"
	SourceGit   = "git"
)

// InsertSource registers a new deck source and returns its ID.
func (db *DB) InsertSource(path, kind string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO sources (path, kind)
		VALUES (?, ?)
	`, path, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %q: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %q: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path, or nil if absent.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	row := db.conn.QueryRow(`
		SELECT id, path, kind, last_scanned
		FROM sources WHERE path = ?
	`, path)

	err := row.Scan(&s.ID, &s.Path, &s.Kind, &s.LastScanned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %q: %w", path, err)
	}
	return &s, nil
}

// AllSources retrieves all registered deck sources.
func (db *DB) AllSources() ([]Source, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, kind, last_scanned
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to select sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Kind, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source rows: %w", err)
	}
	return sources, nil
}

// TouchSource updates the last_scanned timestamp for a source.
func (db *DB) TouchSource(sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to touch source ID %d: %w", sourceID, err)
	}
	return nil
}

// CardsBySource retrieves the fronts and backs of all cards belonging to a
// source.
func (db *DB) CardsBySource(sourceID int64) ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT front, back
		FROM cards WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards for source ID %d: %w", sourceID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.Front, &c.Back); err != nil {
			return nil, fmt.Errorf("failed to scan card row for source ID %d: %w", sourceID, err)
		}
		c.SourceID = sourceID
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows for source ID %d: %w", sourceID, err)
	}
	return cards, nil
}
