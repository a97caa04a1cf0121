// Package auth implements the session/token lifecycle: credential
// verification, dual-token issuance, refresh rotation with reuse detection,
// role-based authorization, and logout.
package auth

import "errors"

// ErrMissingCredentials is returned when the login request omits the
// username or password. Handlers translate it into HTTP 400.
var ErrMissingCredentials = errors.New("username and password are required")

// ErrInvalidCredentials covers both an unknown username and a wrong
// password. The two are deliberately indistinguishable so responses cannot
// be used to enumerate usernames. Handlers translate it into HTTP 401.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrMissingToken is returned when no refresh token was presented. This is a
// missing credential, not a security event; handlers translate it into 401
// so the client knows to authenticate.
var ErrMissingToken = errors.New("missing refresh token")

// ErrUnknownSubject is returned when a refresh token names a subject that no
// longer exists. Uniform with the other refresh rejections (403) so token
// probing reveals nothing about which accounts exist.
var ErrUnknownSubject = errors.New("unknown token subject")

// ErrReuseDetected is returned when a cryptographically valid refresh token
// is presented that is no longer in its subject's live session set: the
// replay of an already-rotated (or never-issued) token. By the time a caller
// sees this error the subject's entire session set has been cleared.
var ErrReuseDetected = errors.New("refresh token reuse detected")

// ErrInsufficientRole is returned by the role gate when a valid access token
// carries none of the required roles. Unlike an authentication failure, the
// caller must not respond by refreshing; the new token would carry the same
// roles.
var ErrInsufficientRole = errors.New("insufficient role")
