package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HistoryStore records slugs per identity for pattern learning.
type HistoryStore interface {
	// HistorySlugs returns up to limit slugs, most recent first.
	HistorySlugs(ctx context.Context, identityID string, limit int) ([]string, error)
	AppendHistory(ctx context.Context, e HistoryEntry) error
	// Identities lists every identity with recorded history.
	Identities(ctx context.Context) ([]string, error)
}

// HistoryEntry is one recorded slug.
type HistoryEntry struct {
	ID         int64     `json:"id" yaml:"id"`
	IdentityID string    `json:"identity_id" yaml:"identity_id"`
	URL        string    `json:"url" yaml:"url"`
	Slug       string    `json:"slug" yaml:"slug"`
	Tier       string    `json:"tier,omitempty" yaml:"tier,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// AppendHistory records e.
func (db *DB) AppendHistory(ctx context.Context, e HistoryEntry) error {
	if e.IdentityID == "" || e.Slug == "" {
		return errors.New("history entry requires an identity id and a slug")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO slug_history (identity_id, url, slug, tier)
		VALUES (?, ?, ?, ?)
	`, e.IdentityID, e.URL, e.Slug, NewNullString(e.Tier))
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// History returns up to limit entries for identityID, most recent first.
func (db *DB) History(ctx context.Context, identityID string, limit int) ([]HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT history_id, identity_id, url, slug, tier, created_at
		FROM slug_history
		WHERE identity_id = ?
		ORDER BY history_id DESC
		LIMIT ?
	`, identityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var tier sql.NullString
		if err := rows.Scan(&e.ID, &e.IdentityID, &e.URL, &e.Slug, &tier, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Tier = tier.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// HistorySlugs returns only the slugs of History.
func (db *DB) HistorySlugs(ctx context.Context, identityID string, limit int) ([]string, error) {
	entries, err := db.History(ctx, identityID, limit)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(entries))
	for i, e := range entries {
		slugs[i] = e.Slug
	}
	return slugs, nil
}

// Identities returns every identity with history, sorted.
func (db *DB) Identities(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT DISTINCT identity_id FROM slug_history ORDER BY identity_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// NewNullString maps "" to NULL.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
