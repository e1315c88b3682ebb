package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the signature checked out but the expiry elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid means the token failed signature or claim validation.
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the identity assertion carried by an access token. The
// claim keys are part of the wire contract and must not change.
type AccessClaims struct {
	jwt.RegisteredClaims
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
}

// RefreshClaims carries only the account id. A refresh token is a capability
// to mint new access tokens, not an identity assertion.
type RefreshClaims struct {
	jwt.RegisteredClaims
	ID string `json:"_id"`
}

// TokenConfig holds the signing secrets and validity windows for both token
// kinds. Constructed once at startup from the environment and passed in; the
// issuer never reads ambient state.
type TokenConfig struct {
	AccessSecret  []byte
	AccessExpiry  time.Duration
	RefreshSecret []byte
	RefreshExpiry time.Duration
}

// Identity is the subset of an account baked into access tokens.
type Identity struct {
	ID       string
	Email    string
	Username string
	FullName string
}

// TokenIssuer builds, signs and verifies access and refresh tokens.
type TokenIssuer struct {
	config TokenConfig
}

// NewTokenIssuer creates an issuer from the given config.
func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	return &TokenIssuer{config: config}
}

// IssueAccessToken signs a short-lived access token for the identity.
func (i *TokenIssuer) IssueAccessToken(identity Identity) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.AccessExpiry)),
		},
		ID:       identity.ID,
		Email:    identity.Email,
		Username: identity.Username,
		FullName: identity.FullName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a long-lived refresh token carrying only the
// account id.
func (i *TokenIssuer) IssueRefreshToken(accountID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.RefreshExpiry)),
		},
		ID: accountID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry against the access secret
// and returns the embedded claims.
func (i *TokenIssuer) VerifyAccessToken(signed string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.verify(signed, claims, i.config.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken validates signature and expiry against the refresh
// secret and returns the embedded claims.
func (i *TokenIssuer) VerifyRefreshToken(signed string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.verify(signed, claims, i.config.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *TokenIssuer) verify(signed string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
