package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
)

type stubAuthRepo struct {
	users     map[string]*domain.User // by username
	createErr error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	stored.ID = "id-" + user.Username
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// stubTokens issues "tok:<id>" and understands "expired:<id>".
type stubTokens struct{}

func (stubTokens) Issue(userID string) (string, error) { return "tok:" + userID, nil }

func (stubTokens) Verify(token string) (string, error) {
	switch {
	case strings.HasPrefix(token, "tok:"):
		return strings.TrimPrefix(token, "tok:"), nil
	case strings.HasPrefix(token, "expired:"):
		return "", domain.ErrTokenExpired
	default:
		return "", domain.ErrInvalidToken
	}
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (stubHasher) Compare(hash, password string) bool  { return hash == "hashed:"+password }

type stubGuard struct {
	blocked  bool
	blockAt  int // block a subject after this many failures; 0 disables
	checkErr error
	failures map[string]int
	resets   int
}

func newStubGuard() *stubGuard { return &stubGuard{failures: make(map[string]int)} }

func (g *stubGuard) Blocked(_ context.Context, subject string) (bool, error) {
	if g.blockAt > 0 && g.failures[subject] >= g.blockAt {
		return true, g.checkErr
	}
	return g.blocked, g.checkErr
}

func (g *stubGuard) RecordFailure(_ context.Context, username string) error {
	g.failures[username]++
	return nil
}

func (g *stubGuard) Reset(_ context.Context, username string) error {
	delete(g.failures, username)
	g.resets++
	return nil
}

func newAuthSvc(repo *stubAuthRepo, guard *stubGuard) *AuthService {
	return NewAuthService(repo, stubTokens{}, stubHasher{}, guard, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newAuthSvc(repo, newStubGuard())

	token, user, err := svc.Register(context.Background(), ports.RegisterInput{Username: "  alice ", Password: "pass123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected trimmed username, got %q", user.Username)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}
	if token != "tok:"+user.ID {
		t.Errorf("unexpected token %q", token)
	}
	if repo.users["alice"].PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
}

func TestAuthService_Register_AdminRoleAccepted(t *testing.T) {
	svc := newAuthSvc(newStubAuthRepo(), newStubGuard())

	_, user, err := svc.Register(context.Background(), ports.RegisterInput{Username: "boss", Password: "pass123", Role: "admin"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %q", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newAuthSvc(repo, newStubGuard())

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "ab", Password: "12345"})
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(de.Fields) != 2 {
		t.Errorf("expected username and password errors, got %+v", de.Fields)
	}
	if len(repo.users) != 0 {
		t.Error("nothing must be stored on validation failure")
	}

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bobby", Password: "pass123", Role: "root"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthSvc(newStubAuthRepo(), newStubGuard())

	_, _, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass123"})
	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "other456"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_DuplicateRaceOnInsert(t *testing.T) {
	repo := newStubAuthRepo()
	repo.createErr = domain.ErrUserExists
	svc := newAuthSvc(repo, newStubGuard())

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "pass123"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists from insert, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	guard := newStubGuard()
	svc := newAuthSvc(newStubAuthRepo(), guard)

	_, registered, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	resolved, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if resolved.ID != registered.ID {
		t.Errorf("token resolved to %q, want %q", resolved.ID, registered.ID)
	}
	if guard.resets != 1 {
		t.Errorf("expected guard reset on success, got %d", guard.resets)
	}
}

func TestAuthService_Login_SameErrorForUnknownUserAndBadPassword(t *testing.T) {
	guard := newStubGuard()
	svc := newAuthSvc(newStubAuthRepo(), guard)
	_, _, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Password: "goodpass"})

	_, _, badPass := svc.Login(context.Background(), "dave", "badpass")
	_, _, noUser := svc.Login(context.Background(), "ghost", "goodpass")

	if badPass != domain.ErrInvalidCredentials || noUser != domain.ErrInvalidCredentials {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v / %v", badPass, noUser)
	}
	if guard.failures["dave"] != 1 || guard.failures["ghost"] != 1 {
		t.Errorf("expected failures recorded for both, got %v", guard.failures)
	}
}

func TestAuthService_Login_Blocked(t *testing.T) {
	guard := newStubGuard()
	guard.blocked = true
	svc := newAuthSvc(newStubAuthRepo(), guard)

	if _, _, err := svc.Login(context.Background(), "erin", "whatever"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_GuardErrorIsNonFatal(t *testing.T) {
	guard := newStubGuard()
	guard.checkErr = errors.New("redis timeout")
	svc := newAuthSvc(newStubAuthRepo(), guard)
	_, _, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "frank", Password: "goodpass"})

	if _, _, err := svc.Login(context.Background(), "frank", "goodpass"); err != nil {
		t.Fatalf("expected login to proceed when guard errors, got %v", err)
	}
}

func TestAuthService_Login_FailuresScopedToClient(t *testing.T) {
	guard := newStubGuard()
	guard.blockAt = 2
	svc := newAuthSvc(newStubAuthRepo(), guard)
	_, _, _ = svc.Register(context.Background(), ports.RegisterInput{Username: "admin", Password: "goodpass"})

	attacker := ports.WithClientIP(context.Background(), "203.0.113.9")
	owner := ports.WithClientIP(context.Background(), "198.51.100.7")

	for i := 0; i < 2; i++ {
		_, _, _ = svc.Login(attacker, "admin", "wrong")
	}
	if _, _, err := svc.Login(attacker, "admin", "goodpass"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected attacker to be locked out, got %v", err)
	}
	if guard.failures["admin@203.0.113.9"] != 2 {
		t.Errorf("expected failures keyed by username and address, got %v", guard.failures)
	}
	if _, _, err := svc.Login(owner, "admin", "goodpass"); err != nil {
		t.Fatalf("expected owner login from another address to succeed, got %v", err)
	}
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	svc := newAuthSvc(newStubAuthRepo(), newStubGuard())

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", domain.ErrMissingToken},
		{"garbage", "not-a-token", domain.ErrInvalidToken},
		{"expired", "expired:id-x", domain.ErrTokenExpired},
		{"account gone", "tok:id-deleted", domain.ErrAccountGone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if domain.KindOf(err) != domain.KindUnauthenticated {
				t.Errorf("expected unauthenticated kind, got %v", domain.KindOf(err))
			}
		})
	}
}

func TestAuthService_Authenticate_ResolvesLiveRole(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newAuthSvc(repo, newStubGuard())
	token, _, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "gina", Password: "pass123"})

	repo.users["gina"].Role = domain.RoleAdmin

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !user.IsAdmin() {
		t.Error("expected role change to be visible without a new token")
	}
}
