package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidora/vidora/pkg/accounts"
)

// MemoryDirectory is an in-memory Directory for development and tests. A
// single mutex serializes every operation, which also makes the
// compare-and-swap in RotateRefreshToken atomic.
type MemoryDirectory struct {
	mu   sync.Mutex
	byID map[string]*accounts.Account
	now  func() time.Time
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID: make(map[string]*accounts.Account),
		now:  time.Now,
	}
}

func (d *MemoryDirectory) Create(_ context.Context, acct *accounts.Account) (*accounts.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.byID {
		if existing.Username == acct.Username || existing.Email == acct.Email {
			return nil, ErrDuplicate
		}
	}

	stored := *acct
	stored.ID = uuid.NewString()
	stored.CreatedAt = d.now()
	stored.UpdatedAt = stored.CreatedAt
	d.byID[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (*accounts.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *acct
	return &result, nil
}

func (d *MemoryDirectory) FindRedactedByID(ctx context.Context, id string) (*accounts.Account, error) {
	acct, err := d.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return acct.Redacted(), nil
}

func (d *MemoryDirectory) FindByUsernameOrEmail(_ context.Context, username, email string) (*accounts.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	for _, acct := range d.byID {
		if (username != "" && acct.Username == username) || (email != "" && acct.Email == email) {
			result := *acct
			return &result, nil
		}
	}
	return nil, ErrNotFound
}

func (d *MemoryDirectory) SetRefreshToken(_ context.Context, id, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	acct.RefreshToken = token
	acct.UpdatedAt = d.now()
	return nil
}

func (d *MemoryDirectory) RotateRefreshToken(_ context.Context, id, previous, next string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	if acct.RefreshToken != previous {
		return ErrStaleToken
	}
	acct.RefreshToken = next
	acct.UpdatedAt = d.now()
	return nil
}

func (d *MemoryDirectory) ClearRefreshToken(ctx context.Context, id string) error {
	return d.SetRefreshToken(ctx, id, "")
}

func (d *MemoryDirectory) SetPasswordHash(_ context.Context, id, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return ErrNotFound
	}
	acct.PasswordHash = hash
	acct.UpdatedAt = d.now()
	return nil
}

func (d *MemoryDirectory) UpdateProfile(_ context.Context, id, fullName, email string) (*accounts.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for otherID, other := range d.byID {
		if otherID != id && other.Email == email {
			return nil, ErrDuplicate
		}
	}
	acct.FullName = fullName
	acct.Email = email
	acct.UpdatedAt = d.now()
	result := *acct
	return &result, nil
}

func (d *MemoryDirectory) SetAvatar(_ context.Context, id, url string) (*accounts.Account, error) {
	return d.setImage(id, url, false)
}

func (d *MemoryDirectory) SetCoverImage(_ context.Context, id, url string) (*accounts.Account, error) {
	return d.setImage(id, url, true)
}

func (d *MemoryDirectory) setImage(id, url string, cover bool) (*accounts.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if cover {
		acct.CoverImage = url
	} else {
		acct.Avatar = url
	}
	acct.UpdatedAt = d.now()
	result := *acct
	return &result, nil
}

func (d *MemoryDirectory) Ping(context.Context) error { return nil }

func (d *MemoryDirectory) Close() error { return nil }
