// Package token encodes and decodes the signed, time-bounded tokens used by
// the auth core. Access and refresh tokens are signed with distinct secrets
// so neither kind can ever be replayed as the other.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/accesslab/employee-auth-api/internal/model"
)

// ErrInvalid is returned when a token is malformed, carries a bad signature,
// was signed with an unexpected method, or is missing required claims.
// A tampered token never downgrades to an empty claim set.
var ErrInvalid = errors.New("token invalid")

// ErrExpired is returned when a token is cryptographically sound but its
// lifetime window has closed. The window has an exclusive upper bound: a
// token presented exactly at its expiry instant is already expired.
var ErrExpired = errors.New("token expired")

// AccessClaims is the identity and role set decoded from an access token.
type AccessClaims struct {
	Username string
	Roles    []model.Role
}

// Codec issues and verifies access and refresh tokens. The zero value is not
// usable; construct with New.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time // swapped out by tests
}

func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// userInfo is the nested claim object carried by access tokens. The envelope
// matches what API clients already expect: {"UserInfo":{"username","roles"}}.
type userInfo struct {
	Username string       `json:"username"`
	Roles    []model.Role `json:"roles"`
}

type accessClaims struct {
	UserInfo userInfo `json:"UserInfo"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueAccess signs a short-lived access token carrying the subject and its
// current role set. Access tokens are never persisted; validity is purely
// signature plus lifetime.
func (c *Codec) IssueAccess(username string, roles []model.Role) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.accessTTL)
	claims := accessClaims{
		UserInfo: userInfo{Username: username, Roles: roles},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh signs a long-lived refresh token for the subject. The jti
// claim is a random UUID so two tokens issued within the same second are
// never byte-equal; the session store relies on that for set semantics.
func (c *Codec) IssueRefresh(username string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.refreshTTL)
	claims := refreshClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// RefreshTTL exposes the configured refresh lifetime so callers can align
// cookie max-age and session-set expiry with token expiry.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// DecodeAccess verifies an access token and returns its claims. Fails with
// ErrInvalid on any signature or structural problem and ErrExpired once the
// lifetime window has closed.
func (c *Codec) DecodeAccess(raw string) (AccessClaims, error) {
	var claims accessClaims
	if err := c.verify(raw, &claims, c.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	if claims.UserInfo.Username == "" {
		return AccessClaims{}, ErrInvalid
	}
	if err := c.expired(claims.ExpiresAt); err != nil {
		return AccessClaims{}, err
	}
	return AccessClaims{Username: claims.UserInfo.Username, Roles: claims.UserInfo.Roles}, nil
}

// DecodeRefresh verifies a refresh token and returns its subject. When the
// only defect is expiry, the subject is still returned alongside ErrExpired:
// the rotator uses it to reap the stale store entry and logout uses it to
// locate the session to drop.
func (c *Codec) DecodeRefresh(raw string) (string, error) {
	var claims refreshClaims
	if err := c.verify(raw, &claims, c.refreshSecret); err != nil {
		return "", err
	}
	if claims.Username == "" {
		return "", ErrInvalid
	}
	if err := c.expired(claims.ExpiresAt); err != nil {
		return claims.Username, err
	}
	return claims.Username, nil
}

// verify parses raw with signature and method checks only. Lifetime is
// enforced separately by expired() because the library treats a token at the
// exact expiry instant as still valid, and we require the closed window.
func (c *Codec) verify(raw string, claims jwt.Claims, secret []byte) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || !tok.Valid {
		return ErrInvalid
	}
	return nil
}

func (c *Codec) expired(exp *jwt.NumericDate) error {
	if exp == nil {
		return ErrInvalid
	}
	if !c.now().Before(exp.Time) {
		return ErrExpired
	}
	return nil
}
