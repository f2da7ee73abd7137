package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite
)

var (
	errNoMatches   = errors.New("no conversations found")
	errManyMatches = errors.New("multiple conversations matched the input")
)

// Conversation is a single question/answer pair in the history database.
type Conversation struct {
	ID             string     `db:"id"`
	Title          *string    `db:"title"`
	Question       string     `db:"question"`
	Answer         string     `db:"answer"`
	HasScreenshot  bool       `db:"has_screenshot"`
	ScreenshotPath *string    `db:"screenshot_path"`
	API            string     `db:"api"`
	Model          *string    `db:"model"`
	Metadata       Metadata   `db:"metadata"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

// Metadata records the request parameters a conversation was made with.
// Stored as a JSON column.
type Metadata struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int64   `json:"max_tokens,omitempty"`
}

func (m Metadata) Value() (driver.Value, error) {
	bts, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return string(bts), nil
}

func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), m) //nolint:wrapcheck
	case []byte:
		return json.Unmarshal(v, m) //nolint:wrapcheck
	default:
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
}

func openDB(path string) (*historyDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd
		return nil, fastaskError{err, "Could not create history directory."}
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fastaskError{err, "Could not open history database."}
	}
	if err := db.Ping(); err != nil {
		return nil, fastaskError{err, "Could not reach history database."}
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id string NOT NULL PRIMARY KEY,
			title string,
			question string NOT NULL,
			answer string NOT NULL DEFAULT '',
			has_screenshot boolean NOT NULL DEFAULT false,
			screenshot_path string,
			api string NOT NULL DEFAULT '',
			model string,
			metadata string,
			created_at datetime NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			updated_at datetime
		);
		CREATE INDEX IF NOT EXISTS history_updated_at ON history (updated_at)
	`); err != nil {
		return nil, fastaskError{err, "Could not initialize history database."}
	}
	return &historyDB{db: db}, nil
}

type historyDB struct {
	db *sqlx.DB
}

func (c *historyDB) Close() error {
	return c.db.Close() //nolint:wrapcheck
}

// Save inserts a new history row, or refreshes the answer and title of an
// existing one.
func (c *historyDB) Save(ctx context.Context, convo Conversation) error {
	if convo.ID == "" {
		return fmt.Errorf("missing conversation id")
	}
	if _, err := c.db.NamedExecContext(ctx, `
		INSERT INTO history (id, title, question, answer, has_screenshot, screenshot_path, api, model, metadata)
		VALUES (:id, :title, :question, :answer, :has_screenshot, :screenshot_path, :api, :model, :metadata)
		ON CONFLICT (id) DO UPDATE
		SET answer = excluded.answer,
		    title = COALESCE(excluded.title, title),
		    has_screenshot = has_screenshot OR excluded.has_screenshot,
		    screenshot_path = COALESCE(excluded.screenshot_path, screenshot_path),
		    model = COALESCE(excluded.model, model),
		    metadata = excluded.metadata,
		    updated_at = strftime('%Y-%m-%d %H::%M::%f', 'now')
	`, convo); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// UpdateAnswer replaces the answer of an existing row. Used to attach a
// partial answer when generation was interrupted or the final one when the
// stream completes.
func (c *historyDB) UpdateAnswer(ctx context.Context, id, answer string) error {
	if _, err := c.db.ExecContext(ctx, c.db.Rebind(`
		UPDATE history
		SET answer = ?, updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')
		WHERE id = ?
	`), answer, id); err != nil {
		return fmt.Errorf("UpdateAnswer: %w", err)
	}
	return nil
}

// Find looks a conversation up by conversation id prefix or exact title.
func (c *historyDB) Find(ctx context.Context, in string) (*Conversation, error) {
	var conversations []Conversation
	var err error

	if len(in) < convoIDMinLen {
		err = c.findByExactTitle(ctx, &conversations, in)
	} else {
		err = c.findByIDOrTitle(ctx, &conversations, in)
	}
	if err != nil {
		return nil, fmt.Errorf("Find: %w", err)
	}

	if len(conversations) > 1 {
		return nil, errManyMatches
	}
	if len(conversations) == 1 {
		return &conversations[0], nil
	}
	return nil, errNoMatches
}

func (c *historyDB) findByExactTitle(ctx context.Context, result *[]Conversation, in string) error {
	if err := c.db.SelectContext(ctx, result, c.db.Rebind(`
		SELECT *
		FROM history
		WHERE title = ?
	`), in); err != nil {
		return fmt.Errorf("findByExactTitle: %w", err)
	}
	return nil
}

func (c *historyDB) findByIDOrTitle(ctx context.Context, result *[]Conversation, in string) error {
	if err := c.db.SelectContext(ctx, result, c.db.Rebind(`
		SELECT *
		FROM history
		WHERE id glob ?
		OR title = ?
	`), in+"*", in); err != nil {
		return fmt.Errorf("findByIDOrTitle: %w", err)
	}
	return nil
}

// FindHEAD returns the most recently touched conversation.
func (c *historyDB) FindHEAD(ctx context.Context) (*Conversation, error) {
	var convo Conversation
	if err := c.db.GetContext(ctx, &convo, `
		SELECT *
		FROM history
		ORDER BY COALESCE(updated_at, created_at) DESC
		LIMIT 1
	`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNoMatches
		}
		return nil, fmt.Errorf("FindHEAD: %w", err)
	}
	return &convo, nil
}

// likeEscaper neutralizes LIKE wildcards so filters match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the history, newest first, optionally filtered by a substring
// of the question or answer. A limit of zero or less means everything.
func (c *historyDB) List(ctx context.Context, filter string, limit, offset int) ([]Conversation, error) {
	var convos []Conversation
	like := "%" + likeEscaper.Replace(filter) + "%"
	if limit <= 0 {
		limit = -1
	}
	if err := c.db.SelectContext(ctx, &convos, c.db.Rebind(`
		SELECT *
		FROM history
		WHERE ? = '%%'
		OR question LIKE ? ESCAPE '\'
		OR answer LIKE ? ESCAPE '\'
		ORDER BY COALESCE(updated_at, created_at) DESC
		LIMIT ? OFFSET ?
	`), like, like, like, limit, offset); err != nil {
		return convos, fmt.Errorf("List: %w", err)
	}
	return convos, nil
}

// Delete removes a single conversation. Deleting a missing id is not an
// error.
func (c *historyDB) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, c.db.Rebind(`
		DELETE FROM history
		WHERE id = ?
	`), id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// Clear wipes the entire history.
func (c *historyDB) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}

// Completions returns the ids and titles for shell completion.
func (c *historyDB) Completions(ctx context.Context) ([]string, error) {
	var results []string
	if err := c.db.SelectContext(ctx, &results, fmt.Sprintf(`
		SELECT printf('%%.%ds', id) || '	' || COALESCE(title, substr(question, 1, 40))
		FROM history
	`, convoIDShort)); err != nil {
		return results, fmt.Errorf("Completions: %w", err)
	}
	return results, nil
}
