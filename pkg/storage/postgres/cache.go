package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vidora/vidora/pkg/accounts"
	"github.com/vidora/vidora/pkg/storage"
)

// CachedDirectory decorates a Directory with a redis account-by-id cache.
// The auth middleware loads an account on every protected request; a short
// TTL takes that read off the database. Every mutation invalidates, and the
// refresh-token compare-and-swap still runs against the authoritative store,
// so rotation semantics are unaffected.
type CachedDirectory struct {
	inner storage.Directory
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedDirectory connects to redis and wraps the given directory.
func NewCachedDirectory(inner storage.Directory, cfg storage.Config) (*CachedDirectory, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB >= 0 {
		opts.DB = cfg.RedisDB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedDirectory{inner: inner, cache: client, ttl: cfg.CacheTTL}, nil
}

// NewCachedDirectoryWithClient wraps a directory around an existing redis
// client. Used by tests with miniredis.
func NewCachedDirectoryWithClient(inner storage.Directory, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{inner: inner, cache: client, ttl: ttl}
}

func cacheKey(id string) string {
	return fmt.Sprintf("account:%s", id)
}

// FindByID always reads through: session flows compare secrets against the
// authoritative store.
func (c *CachedDirectory) FindByID(ctx context.Context, id string) (*accounts.Account, error) {
	return c.inner.FindByID(ctx, id)
}

// FindRedactedByID serves the auth gate's per-request identity lookup from
// redis when possible. Only the redacted view is ever cached.
func (c *CachedDirectory) FindRedactedByID(ctx context.Context, id string) (*accounts.Account, error) {
	data, err := c.cache.Get(ctx, cacheKey(id)).Result()
	if err == nil {
		acct := &accounts.Account{}
		if err := json.Unmarshal([]byte(data), acct); err == nil {
			return acct, nil
		}
		// corrupt entry, drop it and fall through
		c.cache.Del(ctx, cacheKey(id))
	}

	acct, err := c.inner.FindRedactedByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, acct)
	return acct, nil
}

func (c *CachedDirectory) store(ctx context.Context, acct *accounts.Account) {
	data, err := json.Marshal(acct.Redacted())
	if err != nil {
		return
	}
	c.cache.Set(ctx, cacheKey(acct.ID), data, c.ttl)
}

func (c *CachedDirectory) invalidate(ctx context.Context, id string) {
	c.cache.Del(ctx, cacheKey(id))
}

func (c *CachedDirectory) Create(ctx context.Context, acct *accounts.Account) (*accounts.Account, error) {
	return c.inner.Create(ctx, acct)
}

func (c *CachedDirectory) FindByUsernameOrEmail(ctx context.Context, username, email string) (*accounts.Account, error) {
	return c.inner.FindByUsernameOrEmail(ctx, username, email)
}

func (c *CachedDirectory) SetRefreshToken(ctx context.Context, id, token string) error {
	if err := c.inner.SetRefreshToken(ctx, id, token); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedDirectory) RotateRefreshToken(ctx context.Context, id, previous, next string) error {
	if err := c.inner.RotateRefreshToken(ctx, id, previous, next); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedDirectory) ClearRefreshToken(ctx context.Context, id string) error {
	if err := c.inner.ClearRefreshToken(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedDirectory) SetPasswordHash(ctx context.Context, id, hash string) error {
	if err := c.inner.SetPasswordHash(ctx, id, hash); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedDirectory) UpdateProfile(ctx context.Context, id, fullName, email string) (*accounts.Account, error) {
	acct, err := c.inner.UpdateProfile(ctx, id, fullName, email)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return acct, nil
}

func (c *CachedDirectory) SetAvatar(ctx context.Context, id, url string) (*accounts.Account, error) {
	acct, err := c.inner.SetAvatar(ctx, id, url)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return acct, nil
}

func (c *CachedDirectory) SetCoverImage(ctx context.Context, id, url string) (*accounts.Account, error) {
	acct, err := c.inner.SetCoverImage(ctx, id, url)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return acct, nil
}

func (c *CachedDirectory) Ping(ctx context.Context) error {
	if err := c.cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return c.inner.Ping(ctx)
}

func (c *CachedDirectory) Close() error {
	if err := c.cache.Close(); err != nil {
		c.inner.Close()
		return err
	}
	return c.inner.Close()
}
