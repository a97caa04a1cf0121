package token

import (
	"errors"
	"testing"
	"time"

	"github.com/accesslab/employee-auth-api/internal/model"
)

func testCodec() *Codec {
	return New("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessRoundTrip(t *testing.T) {
	c := testCodec()
	roles := []model.Role{model.RoleUser, model.RoleEditor, model.RoleAdmin}
	raw, exp, err := c.IssueAccess("admin", roles)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if until := time.Until(exp); until < 14*time.Minute || until > 15*time.Minute {
		t.Fatalf("unexpected access expiry %v", exp)
	}
	claims, err := c.DecodeAccess(raw)
	if err != nil {
		t.Fatalf("DecodeAccess: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("username = %q", claims.Username)
	}
	if len(claims.Roles) != 3 || claims.Roles[2] != model.RoleAdmin {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	c := testCodec()
	raw, _, err := c.IssueRefresh("user1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	sub, err := c.DecodeRefresh(raw)
	if err != nil {
		t.Fatalf("DecodeRefresh: %v", err)
	}
	if sub != "user1" {
		t.Fatalf("subject = %q", sub)
	}
}

// Two refresh tokens for the same subject must never be byte-equal, even when
// issued back to back; the session store depends on it.
func TestRefreshTokensUnique(t *testing.T) {
	c := testCodec()
	a, _, err := c.IssueRefresh("user1")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := c.IssueRefresh("user1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two refresh tokens issued with identical bytes")
	}
}

// An access token must not verify as a refresh token and vice versa: the two
// kinds are signed with independent secrets.
func TestCrossKindReplayRejected(t *testing.T) {
	c := testCodec()
	access, _, err := c.IssueAccess("admin", []model.Role{model.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.DecodeRefresh(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access token accepted as refresh: err=%v", err)
	}
	refresh, _, err := c.IssueRefresh("admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.DecodeAccess(refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh token accepted as access: err=%v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	c := testCodec()
	raw, _, err := c.IssueAccess("user1", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	tampered := raw[:len(raw)-2] + "xx"
	if _, err := c.DecodeAccess(tampered); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tampered token: err=%v, want ErrInvalid", err)
	}
	if _, err := c.DecodeAccess("not-a-jwt"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("garbage token: err=%v, want ErrInvalid", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	c := testCodec()
	other := New("different-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	raw, _, err := other.IssueAccess("user1", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.DecodeAccess(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("foreign signature: err=%v, want ErrInvalid", err)
	}
}

func TestAccessExpiry(t *testing.T) {
	c := testCodec()
	issued := time.Now().UTC()
	raw, exp, err := c.IssueAccess("user1", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatal(err)
	}

	// Past the window: expired regardless of refresh-token validity.
	c.now = func() time.Time { return issued.Add(16 * time.Minute) }
	if _, err := c.DecodeAccess(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("after window: err=%v, want ErrExpired", err)
	}

	// Exactly at the boundary: the window's upper bound is exclusive.
	c.now = func() time.Time { return exp }
	if _, err := c.DecodeAccess(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("at boundary: err=%v, want ErrExpired", err)
	}

	// One second inside the window: still valid.
	c.now = func() time.Time { return exp.Add(-time.Second) }
	if _, err := c.DecodeAccess(raw); err != nil {
		t.Fatalf("inside window: %v", err)
	}
}

// DecodeRefresh keeps reporting the subject on expiry so callers can reap the
// stale session entry or honor an idempotent logout.
func TestExpiredRefreshKeepsSubject(t *testing.T) {
	c := testCodec()
	raw, exp, err := c.IssueRefresh("user2")
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return exp.Add(time.Hour) }
	sub, err := c.DecodeRefresh(raw)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err=%v, want ErrExpired", err)
	}
	if sub != "user2" {
		t.Fatalf("subject = %q, want user2", sub)
	}
}
