// internal/authstore/store.go
//
// Local account backend. Accounts, the users/{uid} profile documents and
// failed sign in attempts live in one SQLite file so the app works without a
// hosted identity service.

package authstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/kingrea/agrovoo/internal/auth"
)

// UsersCollection holds one profile document per account.
const UsersCollection = "users"

// Options tune the account policy.
type Options struct {
	// MinPasswordLength rejects shorter passwords as weak.
	MinPasswordLength int
	// MaxFailedAttempts failures inside LockoutWindow block further sign
	// ins for that email until the window slides past them.
	MaxFailedAttempts int
	LockoutWindow     time.Duration
	// HashCost is the bcrypt cost. Zero selects bcrypt.DefaultCost.
	HashCost int
}

// DefaultOptions returns the stock account policy.
func DefaultOptions() Options {
	return Options{
		MinPasswordLength: auth.DefaultMinPasswordLength,
		MaxFailedAttempts: 5,
		LockoutWindow:     15 * time.Minute,
		HashCost:          bcrypt.DefaultCost,
	}
}

// Store implements auth.Service on SQLite.
type Store struct {
	db     *sql.DB
	path   string
	opts   Options
	clock  func() time.Time
	logger *zap.Logger
}

// Option customizes Store construction.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOptions replaces DefaultOptions. Zero fields keep their defaults.
func WithOptions(o Options) Option {
	return func(s *Store) {
		if o.MinPasswordLength > 0 {
			s.opts.MinPasswordLength = o.MinPasswordLength
		}
		if o.MaxFailedAttempts > 0 {
			s.opts.MaxFailedAttempts = o.MaxFailedAttempts
		}
		if o.LockoutWindow > 0 {
			s.opts.LockoutWindow = o.LockoutWindow
		}
		if o.HashCost > 0 {
			s.opts.HashCost = o.HashCost
		}
	}
}

var _ auth.Service = (*Store)(nil)

// Open creates or opens the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("authstore: ensure dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("authstore: open %s: %w", path, err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   path,
		opts:   DefaultOptions(),
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		uid TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash BLOB NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);
	CREATE TABLE IF NOT EXISTS sign_in_failures (
		email TEXT NOT NULL COLLATE NOCASE,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_failures_email ON sign_in_failures(email, at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("authstore: migrate: %w", err)
	}
	return nil
}

// SignIn checks the credentials of an existing account.
func (s *Store) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	const op = "sign-in"
	email, err := normalizeEmail(op, email)
	if err != nil {
		return auth.Session{}, err
	}
	now := s.clock()
	failures, err := s.recentFailures(ctx, email, now)
	if err != nil {
		return auth.Session{}, s.fail(op, err)
	}
	if failures >= s.opts.MaxFailedAttempts {
		s.logger.Warn("authstore: sign in throttled", zap.String("email", email), zap.Int("failures", failures))
		return auth.Session{}, auth.Errorf(op, auth.KindTooManyRequests, "%d failed attempts within %s", failures, s.opts.LockoutWindow)
	}

	var uid string
	var hash []byte
	row := s.db.QueryRowContext(ctx, `SELECT uid, password_hash FROM accounts WHERE email = ?`, email)
	if err := row.Scan(&uid, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if rerr := s.recordFailure(ctx, email, now); rerr != nil {
				return auth.Session{}, s.fail(op, rerr)
			}
			return auth.Session{}, auth.Errorf(op, auth.KindUserNotFound, "no account for %s", email)
		}
		return auth.Session{}, s.fail(op, err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if rerr := s.recordFailure(ctx, email, now); rerr != nil {
			return auth.Session{}, s.fail(op, rerr)
		}
		return auth.Session{}, &auth.Error{Op: op, Kind: auth.KindWrongPassword}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sign_in_failures WHERE email = ?`, email); err != nil {
		return auth.Session{}, s.fail(op, err)
	}
	s.logger.Info("authstore: signed in", zap.String("uid", uid))
	return auth.Session{UserID: uid, Email: email, IssuedAt: now}, nil
}

// CreateAccount registers a new email and password pair.
func (s *Store) CreateAccount(ctx context.Context, email, password string) (auth.Session, error) {
	const op = "create-account"
	email, err := normalizeEmail(op, email)
	if err != nil {
		return auth.Session{}, err
	}
	if len([]rune(password)) < s.opts.MinPasswordLength {
		return auth.Session{}, auth.Errorf(op, auth.KindWeakPassword, "password shorter than %d characters", s.opts.MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.HashCost)
	if err != nil {
		return auth.Session{}, s.fail(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auth.Session{}, s.fail(op, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE email = ?`, email).Scan(&exists); err != nil {
		return auth.Session{}, s.fail(op, err)
	}
	if exists > 0 {
		return auth.Session{}, auth.Errorf(op, auth.KindEmailInUse, "%s already registered", email)
	}
	now := s.clock()
	uid := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		uid, email, hash, now.UTC().Format(time.RFC3339Nano),
	); err != nil {
		if isUniqueViolation(err) {
			return auth.Session{}, auth.Errorf(op, auth.KindEmailInUse, "%s already registered", email)
		}
		return auth.Session{}, s.fail(op, err)
	}
	if err := tx.Commit(); err != nil {
		return auth.Session{}, s.fail(op, err)
	}
	s.logger.Info("authstore: account created", zap.String("uid", uid))
	return auth.Session{UserID: uid, Email: email, IssuedAt: now}, nil
}

// WriteProfile stores the profile document of an existing account,
// replacing any previous version.
func (s *Store) WriteProfile(ctx context.Context, userID string, profile auth.Profile) error {
	const op = "write-profile"
	userID = strings.TrimSpace(userID)
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE uid = ?`, userID).Scan(&exists); err != nil {
		return s.fail(op, err)
	}
	if exists == 0 {
		return auth.Errorf(op, auth.KindUserNotFound, "no account %q", userID)
	}
	body, err := json.Marshal(profile)
	if err != nil {
		return s.fail(op, err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		UsersCollection, userID, string(body), s.clock().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return s.fail(op, err)
	}
	s.logger.Debug("authstore: profile written", zap.String("uid", userID))
	return nil
}

// Profile reads the profile document of an account.
func (s *Store) Profile(ctx context.Context, userID string) (auth.Profile, error) {
	const op = "read-profile"
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		UsersCollection, strings.TrimSpace(userID),
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Profile{}, auth.Errorf(op, auth.KindUserNotFound, "no profile for %q", userID)
		}
		return auth.Profile{}, s.fail(op, err)
	}
	var profile auth.Profile
	if err := json.Unmarshal([]byte(body), &profile); err != nil {
		return auth.Profile{}, s.fail(op, err)
	}
	return profile, nil
}

func (s *Store) recentFailures(ctx context.Context, email string, now time.Time) (int, error) {
	since := now.Add(-s.opts.LockoutWindow).UnixNano()
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sign_in_failures WHERE email = ? AND at > ?`, email, since,
	).Scan(&n)
	return n, err
}

func (s *Store) recordFailure(ctx context.Context, email string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sign_in_failures (email, at) VALUES (?, ?)`, email, now.UnixNano())
	return err
}

func (s *Store) fail(op string, err error) error {
	kind := auth.KindOf(err)
	if kind == auth.KindUnknown {
		s.logger.Error("authstore: backend failure", zap.String("op", op), zap.Error(err))
	}
	return &auth.Error{Op: op, Kind: kind, Err: err}
}

func normalizeEmail(op, raw string) (string, error) {
	email := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", auth.Errorf(op, auth.KindInvalidEmail, "malformed email %q", raw)
	}
	return strings.ToLower(email), nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
