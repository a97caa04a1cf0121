package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/session"
	"github.com/accesslab/employee-auth-api/internal/token"
	"github.com/accesslab/employee-auth-api/internal/utils"
)

// fakeUsers is an in-memory UserSource mirroring the repository contract:
// unknown usernames surface as sql.ErrNoRows.
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) setRoles(username string, roles []model.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[username]
	u.Roles = roles
	f.users[username] = u
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (n *recordingNotifier) TokenReuse(_ context.Context, subject string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func newTestService(t *testing.T) (*Service, *fakeUsers, *recordingNotifier) {
	t.Helper()
	users := &fakeUsers{users: map[string]model.User{
		"admin": {ID: 1, Username: "admin", PasswordHash: mustHash(t, "admin"),
			Roles: []model.Role{model.RoleUser, model.RoleEditor, model.RoleAdmin}},
		"user1": {ID: 2, Username: "user1", PasswordHash: mustHash(t, "user1pass"),
			Roles: []model.Role{model.RoleUser}},
	}}
	notifier := &recordingNotifier{}
	codec := token.New("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := NewService(users, codec, session.NewMemoryStore(), notifier)
	return svc, users, notifier
}

func TestLoginThenRefreshCarriesCurrentRoles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	next, err := svc.Refresh(ctx, grant.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := svc.Codec.DecodeAccess(next.AccessToken)
	if err != nil {
		t.Fatalf("DecodeAccess: %v", err)
	}
	want := []model.Role{model.RoleUser, model.RoleEditor, model.RoleAdmin}
	if len(claims.Roles) != len(want) {
		t.Fatalf("roles = %v, want %v", claims.Roles, want)
	}
	for i, r := range want {
		if claims.Roles[i] != r {
			t.Fatalf("roles = %v, want %v", claims.Roles, want)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for name, tc := range map[string]struct {
		user, pass string
		want       error
	}{
		"missing username": {"", "x", ErrMissingCredentials},
		"missing password": {"admin", "", ErrMissingCredentials},
		"unknown user":     {"ghost", "whatever", ErrInvalidCredentials},
		"wrong password":   {"admin", "nope", ErrInvalidCredentials},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.user, tc.pass); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

// Replaying a rotated-out token must fail and take the subject's entire
// session fleet with it, including a still-valid sibling session.
func TestReuseClearsWholeFleet(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "admin", "admin") // device A
	if err != nil {
		t.Fatal(err)
	}
	sibling, err := svc.Login(ctx, "admin", "admin") // device B
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("legitimate rotation failed: %v", err)
	}

	// Attacker replays the consumed token.
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("replay err = %v, want ErrReuseDetected", err)
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "admin" {
		t.Fatalf("notifier saw %v, want one reuse event for admin", notifier.subjects)
	}

	// Both the rotation result and the sibling session were invalidated.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("post-clear rotated token err = %v, want ErrReuseDetected", err)
	}
	if _, err := svc.Refresh(ctx, sibling.RefreshToken); !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("post-clear sibling err = %v, want ErrReuseDetected", err)
	}
}

func TestConcurrentRefreshSingleSuccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		reuses    int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, grant.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrReuseDetected):
				reuses++
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if reuses != callers-1 {
		t.Fatalf("reuse rejections = %d, want %d", reuses, callers-1)
	}
}

func TestRefreshRejections(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("empty token err = %v, want ErrMissingToken", err)
	}
	if _, err := svc.Refresh(ctx, "garbage.token.here"); !errors.Is(err, token.ErrInvalid) {
		t.Fatalf("malformed token err = %v, want token.ErrInvalid", err)
	}

	// A well-signed token whose subject no longer exists.
	grant, err := svc.Login(ctx, "user1", "user1pass")
	if err != nil {
		t.Fatal(err)
	}
	users.mu.Lock()
	delete(users.users, "user1")
	users.mu.Unlock()
	if _, err := svc.Refresh(ctx, grant.RefreshToken); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("deleted subject err = %v, want ErrUnknownSubject", err)
	}
}

// Role changes on the user record must show up in the access token minted by
// the next rotation, not be copied forward from the old token.
func TestRefreshReReadsRoles(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Login(ctx, "user1", "user1pass")
	if err != nil {
		t.Fatal(err)
	}
	users.setRoles("user1", []model.Role{model.RoleUser, model.RoleEditor})

	next, err := svc.Refresh(ctx, grant.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Codec.DecodeAccess(next.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims.Roles) != 2 || claims.Roles[1] != model.RoleEditor {
		t.Fatalf("roles = %v, want updated set", claims.Roles)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	grant, err := svc.Login(ctx, "user1", "user1pass")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, grant.RefreshToken); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(ctx, grant.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("empty-token logout: %v", err)
	}
	if err := svc.Logout(ctx, "not-a-token"); err != nil {
		t.Fatalf("garbage-token logout: %v", err)
	}

	// The session really is gone: the token now trips the reuse path.
	if _, err := svc.Refresh(ctx, grant.RefreshToken); !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("refresh after logout err = %v, want ErrReuseDetected", err)
	}
}
