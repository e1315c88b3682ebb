// Package postgres implements the user directory on PostgreSQL. Refresh-token
// rotation is a single conditional UPDATE keyed on the previous token value,
// so the read-compare-write sequence is atomic at the database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vidora/vidora/pkg/accounts"
	"github.com/vidora/vidora/pkg/storage"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	full_name     TEXT NOT NULL,
	avatar        TEXT NOT NULL,
	cover_image   TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts (username);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts (email);
`

const accountColumns = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`

// Directory is the PostgreSQL-backed user directory.
type Directory struct {
	db *sql.DB
}

// NewDirectory opens a connection pool, verifies connectivity and ensures the
// schema exists.
func NewDirectory(cfg storage.Config) (*Directory, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.PostgresMaxConns)
	db.SetMaxIdleConns(cfg.PostgresMinConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PostgresTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Directory{db: db}, nil
}

// NewDirectoryWithDB wraps an existing database handle. Used by tests.
func NewDirectoryWithDB(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Create(ctx context.Context, acct *accounts.Account) (*accounts.Account, error) {
	id := uuid.NewString()

	row := d.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, username, email, full_name, avatar, cover_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+accountColumns,
		id, acct.Username, acct.Email, acct.FullName, acct.Avatar, acct.CoverImage, acct.PasswordHash)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

func (d *Directory) FindByID(ctx context.Context, id string) (*accounts.Account, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acct, nil
}

// FindRedactedByID never selects the secret columns, so the hash and the
// stored refresh token cannot leak into the loaded view.
func (d *Directory) FindRedactedByID(ctx context.Context, id string) (*accounts.Account, error) {
	acct := &accounts.Account{}
	err := d.db.QueryRowContext(ctx, `
		SELECT id, username, email, full_name, avatar, cover_image, created_at, updated_at
		FROM accounts WHERE id = $1`, id).Scan(
		&acct.ID,
		&acct.Username,
		&acct.Email,
		&acct.FullName,
		&acct.Avatar,
		&acct.CoverImage,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acct, nil
}

func (d *Directory) FindByUsernameOrEmail(ctx context.Context, username, email string) (*accounts.Account, error) {
	if username == "" && email == "" {
		return nil, storage.ErrNotFound
	}

	row := d.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE (username = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')
		LIMIT 1`, username, email)

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return acct, nil
}

func (d *Directory) SetRefreshToken(ctx context.Context, id, token string) error {
	return d.exec(ctx, `
		UPDATE accounts SET refresh_token = $2, updated_at = NOW()
		WHERE id = $1`, id, token)
}

// RotateRefreshToken swaps the stored token only when it still equals
// previous. Zero rows updated means either the account vanished or another
// refresh won the race; the follow-up existence check tells them apart.
func (d *Directory) RotateRefreshToken(ctx context.Context, id, previous, next string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE accounts SET refresh_token = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token = $2`, id, previous, next)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rotation result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check account existence: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrStaleToken
}

func (d *Directory) ClearRefreshToken(ctx context.Context, id string) error {
	return d.SetRefreshToken(ctx, id, "")
}

func (d *Directory) SetPasswordHash(ctx context.Context, id, hash string) error {
	return d.exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, hash)
}

func (d *Directory) UpdateProfile(ctx context.Context, id, fullName, email string) (*accounts.Account, error) {
	row := d.db.QueryRowContext(ctx, `
		UPDATE accounts SET full_name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns, id, fullName, email)

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return acct, nil
}

func (d *Directory) SetAvatar(ctx context.Context, id, url string) (*accounts.Account, error) {
	return d.updateImage(ctx, "avatar", id, url)
}

func (d *Directory) SetCoverImage(ctx context.Context, id, url string) (*accounts.Account, error) {
	return d.updateImage(ctx, "cover_image", id, url)
}

func (d *Directory) updateImage(ctx context.Context, column, id, url string) (*accounts.Account, error) {
	// column is one of two fixed identifiers, never caller input
	row := d.db.QueryRowContext(ctx, `
		UPDATE accounts SET `+column+` = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns, id, url)

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", column, err)
	}
	return acct, nil
}

func (d *Directory) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Directory) Close() error {
	return d.db.Close()
}

func (d *Directory) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	acct := &accounts.Account{}
	err := row.Scan(
		&acct.ID,
		&acct.Username,
		&acct.Email,
		&acct.FullName,
		&acct.Avatar,
		&acct.CoverImage,
		&acct.PasswordHash,
		&acct.RefreshToken,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
