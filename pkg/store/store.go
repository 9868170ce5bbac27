// Package store implements the profile/identity store on SQLite, plus the
// in-memory demo substitute used when no database is configured.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/microcosm-cc/bluemonday"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/safepassage/safepassage/pkg/domain"
)

//go:embed schema.sql
var schema string

// sentinel errors for callers to branch on
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// sanitizer strips markup from user-supplied free text at the store boundary
var sanitizer = bluemonday.StrictPolicy()

// User is an identity record; the traveler-facing data lives in the profile.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Config represents database configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store wraps the database connection and provides profile/identity access
type Store struct {
	db *sqlx.DB
}

// New creates a new store over SQLite
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store DSN is required")
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// optimize SQLite settings
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000", // 5 second timeout for locks
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error { return s.db.Close() }

// CreateUser inserts a new identity record. Returns ErrConflict when the
// email is already registered.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			user.ID, user.Email, user.PasswordHash, user.CreatedAt)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			if isUniqueError(err) {
				return &criticalError{err: ErrConflict}
			}
			return &criticalError{err: fmt.Errorf("insert user: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, unwrapCritical(err)
	}
	return user, nil
}

// GetUserByEmail finds an identity record by email, ErrNotFound when missing.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetProfile reads one profile, ErrNotFound when missing.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT p.user_id, u.email, p.name, p.avatar, p.location, p.bio, p.style,
		       p.priorities, p.itinerary_types, p.created_at, p.updated_at
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return row.toDomain(), nil
}

// ListProfiles returns all profiles in insertion order, the candidate set
// for the directory filter.
func (s *Store) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	var rows []profileRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.user_id, u.email, p.name, p.avatar, p.location, p.bio, p.style,
		       p.priorities, p.itinerary_types, p.created_at, p.updated_at
		FROM profiles p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at, p.user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles := make([]domain.UserProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, *row.toDomain())
	}
	return profiles, nil
}

// InsertProfile creates the profile record for a user. Returns ErrConflict
// when the profile already exists, so sign-up can re-read instead of failing.
func (s *Store) InsertProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	row, err := toRow(profile)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err = retrier.Do(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO profiles (user_id, name, avatar, location, bio, style, priorities, itinerary_types, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.UserID, row.Name, row.Avatar, row.Location, row.Bio, row.Style,
			row.Priorities, row.ItineraryTypes, now, now)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			if isUniqueError(err) {
				return &criticalError{err: ErrConflict}
			}
			return &criticalError{err: fmt.Errorf("insert profile: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, unwrapCritical(err)
	}

	return s.GetProfile(ctx, profile.UserID)
}

// UpdateProfile applies a partial update and returns the stored record.
func (s *Store) UpdateProfile(ctx context.Context, userID string, upd *domain.ProfileUpdate) (*domain.UserProfile, error) {
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyUpdate(current, upd)
	row, err := toRow(current)
	if err != nil {
		return nil, err
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err = retrier.Do(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			UPDATE profiles
			SET name = ?, avatar = ?, location = ?, bio = ?, style = ?,
			    priorities = ?, itinerary_types = ?, updated_at = ?
			WHERE user_id = ?`,
			row.Name, row.Avatar, row.Location, row.Bio, row.Style,
			row.Priorities, row.ItineraryTypes, time.Now().UTC(), userID)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("update profile: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, unwrapCritical(err)
	}

	return s.GetProfile(ctx, userID)
}

// profileRow is the database shape of a profile; multi-valued fields are
// JSON arrays of stable IDs.
type profileRow struct {
	UserID         string    `db:"user_id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	Avatar         string    `db:"avatar"`
	Location       string    `db:"location"`
	Bio            string    `db:"bio"`
	Style          string    `db:"style"`
	Priorities     string    `db:"priorities"`
	ItineraryTypes string    `db:"itinerary_types"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// toDomain maps a row to the domain shape, defaulting or dropping values
// that fall outside the closed vocabularies instead of trusting stored data.
func (r *profileRow) toDomain() *domain.UserProfile {
	profile := &domain.UserProfile{
		ID:        r.UserID,
		UserID:    r.UserID,
		Email:     r.Email,
		Name:      r.Name,
		Avatar:    r.Avatar,
		Location:  r.Location,
		Bio:       r.Bio,
		Style:     domain.StyleQuietObserver,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if style := domain.CommunityStyle(r.Style); style.Valid() {
		profile.Style = style
	}

	var priorities []string
	if err := json.Unmarshal([]byte(r.Priorities), &priorities); err == nil {
		for _, p := range priorities {
			if priority := domain.SafetyPriority(p); priority.Valid() {
				profile.Priorities = append(profile.Priorities, priority)
			}
		}
	}

	var types []string
	if err := json.Unmarshal([]byte(r.ItineraryTypes), &types); err == nil {
		for _, t := range types {
			if it := domain.ItineraryType(t); it.Valid() && it != domain.TypeCustom {
				profile.PreferredItineraryTypes = append(profile.PreferredItineraryTypes, it)
			}
		}
	}

	return profile
}

// toRow maps a domain profile to its database shape, sanitizing free text
// and rejecting values outside the closed vocabularies.
func toRow(p *domain.UserProfile) (*profileRow, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("profile user_id is required")
	}
	style := p.Style
	if style == "" {
		style = domain.StyleQuietObserver
	}
	if !style.Valid() {
		return nil, fmt.Errorf("unknown community style %q", string(p.Style))
	}

	priorities := make([]string, 0, len(p.Priorities))
	seen := make(map[domain.SafetyPriority]struct{}, len(p.Priorities))
	for _, pr := range p.Priorities {
		if !pr.Valid() {
			return nil, fmt.Errorf("unknown safety priority %q", string(pr))
		}
		if _, dup := seen[pr]; dup {
			continue
		}
		seen[pr] = struct{}{}
		priorities = append(priorities, string(pr))
	}
	prioritiesJSON, err := json.Marshal(priorities)
	if err != nil {
		return nil, fmt.Errorf("marshal priorities: %w", err)
	}

	types := make([]string, 0, len(p.PreferredItineraryTypes))
	for _, t := range p.PreferredItineraryTypes {
		if !t.Valid() || t == domain.TypeCustom {
			return nil, fmt.Errorf("unknown itinerary type %q", string(t))
		}
		types = append(types, string(t))
	}
	typesJSON, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("marshal itinerary types: %w", err)
	}

	return &profileRow{
		UserID:         p.UserID,
		Name:           sanitizer.Sanitize(p.Name),
		Avatar:         p.Avatar,
		Location:       sanitizer.Sanitize(p.Location),
		Bio:            sanitizer.Sanitize(p.Bio),
		Style:          string(style),
		Priorities:     string(prioritiesJSON),
		ItineraryTypes: string(typesJSON),
	}, nil
}

// applyUpdate merges a partial update into a profile in place.
func applyUpdate(p *domain.UserProfile, upd *domain.ProfileUpdate) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.Style != nil {
		p.Style = *upd.Style
	}
	if upd.Priorities != nil {
		p.Priorities = upd.Priorities
	}
	if upd.PreferredItineraryTypes != nil {
		p.PreferredItineraryTypes = upd.PreferredItineraryTypes
	}
}
