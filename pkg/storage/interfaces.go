package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vidora/vidora/pkg/accounts"
)

var (
	// ErrNotFound means no account matched the identifier.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicate means the username or email is already taken.
	ErrDuplicate = errors.New("username or email already taken")
	// ErrStaleToken means a conditional refresh-token rotation lost the race:
	// the stored token no longer matched the expected previous value.
	ErrStaleToken = errors.New("stored refresh token did not match")
)

// Directory is the persistence boundary for accounts. It is the sole point
// of serialization for the refresh-token field: RotateRefreshToken performs a
// compare-and-swap keyed on the previous value so concurrent refresh calls
// cannot both succeed.
type Directory interface {
	// Create persists a new account and assigns its id. Returns ErrDuplicate
	// when the username or email is already taken.
	Create(ctx context.Context, acct *accounts.Account) (*accounts.Account, error)

	// FindByID loads an account by id. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*accounts.Account, error)

	// FindRedactedByID loads the secret-stripped view of an account. This is
	// the lookup the auth gate performs on every protected request, and the
	// only read a cache layer may serve.
	FindRedactedByID(ctx context.Context, id string) (*accounts.Account, error)

	// FindByUsernameOrEmail loads the account matching either identifier.
	// Empty arguments do not match anything.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*accounts.Account, error)

	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// Login uses this: starting a session replaces any prior one.
	SetRefreshToken(ctx context.Context, id, token string) error

	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals previous. Returns ErrStaleToken on mismatch.
	RotateRefreshToken(ctx context.Context, id, previous, next string) error

	// ClearRefreshToken removes the stored refresh token, ending the session.
	ClearRefreshToken(ctx context.Context, id string) error

	// SetPasswordHash replaces the stored password hash.
	SetPasswordHash(ctx context.Context, id, hash string) error

	// UpdateProfile replaces fullname and email, returning the updated account.
	UpdateProfile(ctx context.Context, id, fullName, email string) (*accounts.Account, error)

	// SetAvatar replaces the avatar reference, returning the updated account.
	SetAvatar(ctx context.Context, id, url string) (*accounts.Account, error)

	// SetCoverImage replaces the cover image reference, returning the updated
	// account.
	SetCoverImage(ctx context.Context, id, url string) (*accounts.Account, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases held resources.
	Close() error
}

// Config holds storage configuration shared by the directory backends and
// the media uploaders.
type Config struct {
	// Type selects the backend: "memory" or "postgres"
	Type string

	// PostgreSQL configuration
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// Redis cache configuration (optional account cache for token-gated reads)
	RedisURL      string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool
	CacheTTL      time.Duration

	// Media uploader configuration
	MediaType      string // "s3" or "filesystem"
	MediaRoot      string // filesystem uploader root directory
	MediaBaseURL   string // public base URL for filesystem-hosted media
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PublicURL    string // base URL returned for uploaded objects
}

// DefaultConfig returns a development-friendly configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "memory",
		PostgresMaxConns: 25,
		PostgresMinConns: 5,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		CacheEnabled:     false,
		CacheTTL:         30 * time.Second,
		MediaType:        "filesystem",
		MediaRoot:        "./data/media",
		MediaBaseURL:     "/static",
		S3Region:         "us-east-1",
	}
}
