package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/linkslug/models"
)

// ProfileStore persists naming profiles. GetProfile returns (nil, nil)
// when the identity has no profile yet.
type ProfileStore interface {
	GetProfile(ctx context.Context, identityID string) (*models.NamingProfile, error)
	PutProfile(ctx context.Context, p *models.NamingProfile) error
}

// GetProfile returns the stored profile for identityID.
func (db *DB) GetProfile(ctx context.Context, identityID string) (*models.NamingProfile, error) {
	var data string
	err := db.QueryRowContext(ctx,
		"SELECT profile FROM naming_profiles WHERE identity_id = ?", identityID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p models.NamingProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", identityID, err)
	}
	return &p, nil
}

// PutProfile inserts or replaces the profile for p.IdentityID.
func (db *DB) PutProfile(ctx context.Context, p *models.NamingProfile) error {
	if p == nil || p.IdentityID == "" {
		return errors.New("profile requires an identity id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	var confidence sql.NullFloat64
	if p.Pattern != nil {
		confidence = sql.NullFloat64{Float64: p.Pattern.Confidence, Valid: true}
	}
	updated := p.LastUpdated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO naming_profiles (identity_id, profile, confidence, urls_analyzed, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identity_id) DO UPDATE SET
			profile = excluded.profile,
			confidence = excluded.confidence,
			urls_analyzed = excluded.urls_analyzed,
			last_updated = excluded.last_updated
	`, p.IdentityID, string(data), confidence, p.URLsAnalyzed, updated)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ProfileSummary is one row of ListProfiles.
type ProfileSummary struct {
	IdentityID   string
	Confidence   sql.NullFloat64
	URLsAnalyzed int
	LastUpdated  time.Time
}

// ListProfiles returns stored profiles, most recently updated first.
func (db *DB) ListProfiles(ctx context.Context, limit int) ([]ProfileSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT identity_id, confidence, urls_analyzed, last_updated
		FROM naming_profiles
		ORDER BY last_updated DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileSummary
	for rows.Next() {
		var s ProfileSummary
		if err := rows.Scan(&s.IdentityID, &s.Confidence, &s.URLsAnalyzed, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
