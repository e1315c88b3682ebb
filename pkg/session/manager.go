// Package session orchestrates the account and session lifecycle: register,
// login, refresh, logout and password change. It composes the credential
// validator, password hasher, token issuer and user directory, and owns the
// refresh-token rotation invariant.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/vidora/vidora/pkg/accounts"
	"github.com/vidora/vidora/pkg/apperror"
	"github.com/vidora/vidora/pkg/auth"
	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/storage"
)

// Manager implements the session state machine over accounts. Safe for
// concurrent use; all session state lives in the directory.
type Manager struct {
	directory storage.Directory
	hasher    *auth.PasswordHasher
	issuer    *auth.TokenIssuer
	logger    *observability.Logger
}

// NewManager wires the session manager. All collaborators are required.
func NewManager(directory storage.Directory, hasher *auth.PasswordHasher, issuer *auth.TokenIssuer, logger *observability.Logger) *Manager {
	return &Manager{
		directory: directory,
		hasher:    hasher,
		issuer:    issuer,
		logger:    logger,
	}
}

// RegisterInput carries the registration fields plus the media URLs returned
// by the upload collaborator. AvatarURL is mandatory.
type RegisterInput struct {
	FullName      string
	Email         string
	Username      string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// TokenPair is an access/refresh token pair from a login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the successful login payload: the redacted account plus
// both tokens.
type LoginResult struct {
	Account      *accounts.Account `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// PrevalidateRegistration runs the field rules and the duplicate lookup
// without creating anything. Callers with side effects of their own, such as
// media uploads, run this first; Register repeats both checks so the final
// word stays with it.
func (m *Manager) PrevalidateRegistration(ctx context.Context, in RegisterInput) error {
	if err := accounts.ValidateRegistration(accounts.RegistrationInput{
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
	}); err != nil {
		return err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := m.directory.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return apperror.Conflict("user already exists, change username or email")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		m.logger.WithError(err).Error("registration lookup failed")
		return apperror.Internal("something went wrong during registration")
	}
	return nil
}

// Register validates the input, rejects duplicates and persists a new
// account with a hashed password. It does not start a session.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*accounts.Account, error) {
	if err := m.PrevalidateRegistration(ctx, in); err != nil {
		return nil, err
	}

	if in.AvatarURL == "" {
		return nil, apperror.BadRequest("avatar is required")
	}

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		m.logger.WithError(err).Error("password hashing failed")
		return nil, apperror.Internal("something went wrong during registration")
	}

	created, err := m.directory.Create(ctx, &accounts.Account{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       in.AvatarURL,
		CoverImage:   in.CoverImageURL,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// raced with a concurrent registration
		return nil, apperror.Conflict("user already exists, change username or email")
	}
	if err != nil {
		m.logger.WithError(err).Error("account creation failed")
		return nil, apperror.Internal("something went wrong during registration")
	}

	m.logger.WithField("user_id", created.ID).Info("account registered")
	return created.Redacted(), nil
}

// Login verifies credentials, issues a token pair and stores the refresh
// token, overwriting any prior session.
func (m *Manager) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return nil, apperror.BadRequest("username or email is required")
	}

	acct, err := m.directory.FindByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound("user does not exist")
	}
	if err != nil {
		m.logger.WithError(err).Error("login lookup failed")
		return nil, apperror.Internal("something went wrong during login")
	}

	if !m.hasher.Verify(password, acct.PasswordHash) {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	pair, err := m.issueAndStore(ctx, acct)
	if err != nil {
		return nil, err
	}

	m.logger.WithField("user_id", acct.ID).Info("user logged in")
	return &LoginResult{
		Account:      acct.Redacted(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh rotates the refresh token: the presented token must verify and
// must still be the stored one. The old token becomes permanently unusable
// once the rotation commits. Every failure surfaces as 401 so the client
// knows to re-authenticate.
func (m *Manager) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, apperror.Unauthorized("unauthorized request")
	}

	claims, err := m.issuer.VerifyRefreshToken(presented)
	if err != nil {
		// expired and forged tokens look identical to the client
		m.logger.WithError(err).Debug("refresh token rejected")
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	acct, err := m.directory.FindByID(ctx, claims.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid refresh token")
	}
	if err != nil {
		m.logger.WithError(err).Error("refresh lookup failed")
		return nil, apperror.Internal("something went wrong during refresh")
	}

	if acct.RefreshToken != presented {
		return nil, apperror.Unauthorized("refresh token expired or already used")
	}

	accessToken, err := m.issuer.IssueAccessToken(identityOf(acct))
	if err != nil {
		m.logger.WithError(err).Error("access token signing failed")
		return nil, apperror.Internal("tokens not generated")
	}
	refreshToken, err := m.issuer.IssueRefreshToken(acct.ID)
	if err != nil {
		m.logger.WithError(err).Error("refresh token signing failed")
		return nil, apperror.Internal("tokens not generated")
	}

	// conditional swap keyed on the presented value: a concurrent refresh
	// racing on the same account loses here instead of double-issuing
	err = m.directory.RotateRefreshToken(ctx, acct.ID, presented, refreshToken)
	if errors.Is(err, storage.ErrStaleToken) || errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Unauthorized("refresh token expired or already used")
	}
	if err != nil {
		m.logger.WithError(err).Error("refresh token rotation failed")
		return nil, apperror.Internal("something went wrong during refresh")
	}

	m.logger.WithField("user_id", acct.ID).Info("session refreshed")
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the stored refresh token. Outstanding access tokens stay
// valid until their own expiry; only the refresh side is revocable.
func (m *Manager) Logout(ctx context.Context, accountID string) error {
	err := m.directory.ClearRefreshToken(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.Unauthorized("invalid session")
	}
	if err != nil {
		m.logger.WithError(err).Error("logout failed")
		return apperror.Internal("something went wrong during logout")
	}

	m.logger.WithField("user_id", accountID).Info("user logged out")
	return nil
}

// ChangePassword verifies the old password and persists a new hash. The
// current session is left untouched.
func (m *Manager) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if !accounts.ValidPassword(newPassword) {
		return apperror.BadRequest(
			"password must be at least 5 characters with at least one letter and one digit")
	}

	acct, err := m.directory.FindByID(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.Unauthorized("invalid session")
	}
	if err != nil {
		m.logger.WithError(err).Error("password change lookup failed")
		return apperror.Internal("something went wrong")
	}

	if !m.hasher.Verify(oldPassword, acct.PasswordHash) {
		return apperror.Unauthorized("invalid password")
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		m.logger.WithError(err).Error("password hashing failed")
		return apperror.Internal("something went wrong")
	}

	if err := m.directory.SetPasswordHash(ctx, accountID, hash); err != nil {
		m.logger.WithError(err).Error("password update failed")
		return apperror.Internal("something went wrong")
	}

	m.logger.WithField("user_id", accountID).Info("password changed")
	return nil
}

// UpdateProfile replaces fullname and email on the account.
func (m *Manager) UpdateProfile(ctx context.Context, accountID, fullName, email string) (*accounts.Account, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, apperror.BadRequest("all fields are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.BadRequest("email must contain @")
	}

	updated, err := m.directory.UpdateProfile(ctx, accountID, fullName, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid session")
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, apperror.Conflict("email already taken")
	}
	if err != nil {
		m.logger.WithError(err).Error("profile update failed")
		return nil, apperror.Internal("something went wrong")
	}
	return updated.Redacted(), nil
}

// UpdateAvatar stores a new avatar reference.
func (m *Manager) UpdateAvatar(ctx context.Context, accountID, url string) (*accounts.Account, error) {
	return m.updateImage(ctx, accountID, url, m.directory.SetAvatar)
}

// UpdateCoverImage stores a new cover image reference.
func (m *Manager) UpdateCoverImage(ctx context.Context, accountID, url string) (*accounts.Account, error) {
	return m.updateImage(ctx, accountID, url, m.directory.SetCoverImage)
}

func (m *Manager) updateImage(ctx context.Context, accountID, url string, set func(context.Context, string, string) (*accounts.Account, error)) (*accounts.Account, error) {
	if url == "" {
		return nil, apperror.BadRequest("file is required")
	}

	updated, err := set(ctx, accountID, url)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid session")
	}
	if err != nil {
		m.logger.WithError(err).Error("image update failed")
		return nil, apperror.Internal("something went wrong")
	}
	return updated.Redacted(), nil
}

func (m *Manager) issueAndStore(ctx context.Context, acct *accounts.Account) (*TokenPair, error) {
	accessToken, err := m.issuer.IssueAccessToken(identityOf(acct))
	if err != nil {
		m.logger.WithError(err).Error("access token signing failed")
		return nil, apperror.Internal("tokens not generated")
	}
	refreshToken, err := m.issuer.IssueRefreshToken(acct.ID)
	if err != nil {
		m.logger.WithError(err).Error("refresh token signing failed")
		return nil, apperror.Internal("tokens not generated")
	}

	if err := m.directory.SetRefreshToken(ctx, acct.ID, refreshToken); err != nil {
		m.logger.WithError(err).Error("refresh token store failed")
		return nil, apperror.Internal("tokens not generated")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func identityOf(acct *accounts.Account) auth.Identity {
	return auth.Identity{
		ID:       acct.ID,
		Email:    acct.Email,
		Username: acct.Username,
		FullName: acct.FullName,
	}
}
