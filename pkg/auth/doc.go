// Package auth implements the credential primitives: bcrypt password hashing
// and the dual-token JWT issuer.
//
// Access and refresh tokens are signed with distinct secrets and carry
// distinct expiries, so a leaked refresh-signing secret cannot forge access
// tokens and vice versa. Verification distinguishes ErrTokenExpired from
// ErrTokenInvalid internally; callers collapse both to 401 at the boundary.
package auth
