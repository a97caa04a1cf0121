package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/session"
	"github.com/accesslab/employee-auth-api/internal/token"
	"github.com/accesslab/employee-auth-api/internal/utils"
)

// UserSource is the read side of the user store the auth core depends on.
// Absent users surface as sql.ErrNoRows, matching the SQL-backed repository.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// SecurityNotifier receives security-relevant events. Implementations must
// not block the request path; failures are theirs to log and swallow.
type SecurityNotifier interface {
	TokenReuse(ctx context.Context, subject string)
}

// Grant is the result of a successful login or refresh. The access token and
// roles go back in the response body; the refresh token travels through the
// credential channel (an HTTP-only cookie at the edge).
type Grant struct {
	AccessToken    string
	Roles          []model.Role
	RefreshToken   string
	RefreshExpires time.Time
}

// Service orchestrates the token codec, the session store, and the user
// store. It holds no state of its own; all shared state lives in the
// injected collaborators.
type Service struct {
	Users    UserSource
	Codec    *token.Codec
	Sessions session.Store
	Notifier SecurityNotifier // optional; nil disables event publishing
}

func NewService(users UserSource, codec *token.Codec, sessions session.Store, notifier SecurityNotifier) *Service {
	return &Service{Users: users, Codec: codec, Sessions: sessions, Notifier: notifier}
}

// Login verifies the presented credentials and issues a fresh token pair,
// recording the refresh token in the subject's session set. Each login adds
// a session; existing sessions on other devices are untouched.
func (s *Service) Login(ctx context.Context, username, password string) (Grant, error) {
	if username == "" || password == "" {
		return Grant{}, ErrMissingCredentials
	}
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, ErrInvalidCredentials
		}
		return Grant{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Grant{}, ErrInvalidCredentials
	}

	refresh, exp, err := s.Codec.IssueRefresh(u.Username)
	if err != nil {
		return Grant{}, err
	}
	if err := s.Sessions.Add(ctx, u.Username, refresh, s.Codec.RefreshTTL()); err != nil {
		return Grant{}, err
	}
	access, _, err := s.Codec.IssueAccess(u.Username, u.Roles)
	if err != nil {
		return Grant{}, err
	}
	return Grant{AccessToken: access, Roles: u.Roles, RefreshToken: refresh, RefreshExpires: exp}, nil
}

// Refresh consumes a presented refresh token and atomically replaces it with
// a new pair. The order of checks is load-bearing:
//
//  1. nothing presented           -> ErrMissingToken (missing credential)
//  2. bad signature / malformed   -> token.ErrInvalid (potential forgery)
//  3. expired                     -> reap the stale entry, token.ErrExpired
//  4. subject no longer exists    -> ErrUnknownSubject
//  5. token not in the live set   -> reuse: clear the subject's whole
//     session fleet and fail with ErrReuseDetected
//  6. otherwise rotate and issue a pair carrying the subject's current
//     roles, re-read from the user record rather than copied from the old
//     token, so role changes take effect on the next rotation.
//
// Rotation is atomic in the store: of any number of concurrent calls
// presenting the same token, exactly one rotates; the rest observe the token
// already gone and land on the reuse branch.
func (s *Service) Refresh(ctx context.Context, presented string) (Grant, error) {
	if presented == "" {
		return Grant{}, ErrMissingToken
	}
	subject, err := s.Codec.DecodeRefresh(presented)
	if err != nil {
		if errors.Is(err, token.ErrExpired) && subject != "" {
			// Expired tokens are never re-added; drop the stale entry now.
			_, _ = s.Sessions.Remove(ctx, subject, presented)
		}
		return Grant{}, err
	}

	u, err := s.Users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, ErrUnknownSubject
		}
		return Grant{}, err
	}

	fresh, exp, err := s.Codec.IssueRefresh(subject)
	if err != nil {
		return Grant{}, err
	}
	rotated, err := s.Sessions.Rotate(ctx, subject, presented, fresh, s.Codec.RefreshTTL())
	if err != nil {
		return Grant{}, err
	}
	if !rotated {
		// A valid token for a known user that is absent from the live set has
		// already been rotated out: someone is replaying it. The holder of one
		// stolen token may hold others, so the whole fleet is invalidated.
		if err := s.Sessions.Clear(ctx, subject); err != nil {
			return Grant{}, err
		}
		if s.Notifier != nil {
			s.Notifier.TokenReuse(ctx, subject)
		}
		return Grant{}, ErrReuseDetected
	}

	access, _, err := s.Codec.IssueAccess(u.Username, u.Roles)
	if err != nil {
		return Grant{}, err
	}
	return Grant{AccessToken: access, Roles: u.Roles, RefreshToken: fresh, RefreshExpires: exp}, nil
}

// Logout removes the presented refresh token from its subject's session set.
// It succeeds no matter what: an empty, expired, malformed, or already-removed
// token all produce the same outcome, so logout leaks nothing about session
// validity and is safe to repeat.
func (s *Service) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	subject, err := s.Codec.DecodeRefresh(presented)
	if err != nil && !errors.Is(err, token.ErrExpired) {
		return nil
	}
	_, err = s.Sessions.Remove(ctx, subject, presented)
	return err
}

// RevokeAll drops every session the subject holds. Used when an admin
// deletes the account so outstanding refresh tokens die with it.
func (s *Service) RevokeAll(ctx context.Context, subject string) error {
	return s.Sessions.Clear(ctx, subject)
}
