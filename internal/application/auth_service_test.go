package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
)

type accountStoreStub struct {
	account persistence.StaffAccount
	err     error
}

func (s *accountStoreStub) GetAccount(ctx context.Context, id string) (persistence.StaffAccount, error) {
	if s.err != nil {
		return persistence.StaffAccount{}, s.err
	}
	if s.account.ID != id {
		return persistence.StaffAccount{}, persistence.ErrNotFound
	}
	return s.account, nil
}

func (s *accountStoreStub) GetAccountByEmail(ctx context.Context, email string) (persistence.StaffAccount, error) {
	if s.err != nil {
		return persistence.StaffAccount{}, s.err
	}
	if s.account.Email != email {
		return persistence.StaffAccount{}, persistence.ErrNotFound
	}
	return s.account, nil
}

type sessionStoreStub struct {
	sessions map[string]persistence.Session

	createErr error
	pruned    bool
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]persistence.Session)}
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if s.createErr != nil {
		return persistence.Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.pruned = true
	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

func testAccount(t *testing.T) persistence.StaffAccount {
	t.Helper()
	hash, err := CreatePasswordHash("correct horse", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return persistence.StaffAccount{
		ID:           "account-1",
		Email:        "admin@example.com",
		DisplayName:  "Admin",
		IsAdmin:      true,
		PasswordHash: hash,
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("issues a session on valid credentials", func(t *testing.T) {
		sessions := newSessionStoreStub()
		svc := NewAuthService(&accountStoreStub{account: testAccount(t)}, sessions, nil, func() string { return "token-1" }, fixedNow, time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "Admin@Example.com",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Account.ID != "account-1" || !result.Account.IsAdmin {
			t.Fatalf("unexpected account: %+v", result.Account)
		}
		if result.Session.Token == "" {
			t.Fatalf("expected a session token")
		}
		if !result.Session.ExpiresAt.Equal(fixedNow().Add(time.Hour)) {
			t.Fatalf("unexpected expiry: %v", result.Session.ExpiresAt)
		}
		if !sessions.pruned {
			t.Fatalf("expected expired sessions to be pruned")
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		svc := NewAuthService(&accountStoreStub{account: testAccount(t)}, newSessionStoreStub(), nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an unknown email without leaking existence", func(t *testing.T) {
		svc := NewAuthService(&accountStoreStub{account: testAccount(t)}, newSessionStoreStub(), nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "nobody@example.com",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects a disabled account", func(t *testing.T) {
		account := testAccount(t)
		account.Disabled = true
		svc := NewAuthService(&accountStoreStub{account: account}, newSessionStoreStub(), nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "admin@example.com",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	account := persistence.StaffAccount{
		ID:        "account-1",
		Email:     "teacher@example.com",
		TeacherID: strPtr("teacher-1"),
	}

	newService := func(sessions *sessionStoreStub) *AuthService {
		return NewAuthService(&accountStoreStub{account: account}, sessions, nil, nil, fixedNow, time.Hour)
	}

	t.Run("returns the principal for an active session", func(t *testing.T) {
		sessions := newSessionStoreStub()
		sessions.sessions["token-1"] = persistence.Session{
			ID:        "session-1",
			AccountID: "account-1",
			Token:     "token-1",
			ExpiresAt: fixedNow().Add(time.Hour),
		}

		principal, err := newService(sessions).ValidateSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if principal.AccountID != "account-1" || principal.TeacherID != "teacher-1" || principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		sessions := newSessionStoreStub()
		sessions.sessions["token-1"] = persistence.Session{
			AccountID: "account-1",
			Token:     "token-1",
			ExpiresAt: fixedNow().Add(-time.Minute),
		}

		_, err := newService(sessions).ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		revokedAt := fixedNow().Add(-time.Minute)
		sessions := newSessionStoreStub()
		sessions.sessions["token-1"] = persistence.Session{
			AccountID: "account-1",
			Token:     "token-1",
			ExpiresAt: fixedNow().Add(time.Hour),
			RevokedAt: &revokedAt,
		}

		_, err := newService(sessions).ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		_, err := newService(newSessionStoreStub()).ValidateSession(context.Background(), "token-unknown")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Run("marks the session revoked", func(t *testing.T) {
		sessions := newSessionStoreStub()
		sessions.sessions["token-1"] = persistence.Session{
			AccountID: "account-1",
			Token:     "token-1",
			ExpiresAt: fixedNow().Add(time.Hour),
		}
		svc := NewAuthService(&accountStoreStub{}, sessions, nil, nil, fixedNow, time.Hour)

		if err := svc.RevokeSession(context.Background(), "token-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions.sessions["token-1"].RevokedAt == nil {
			t.Fatalf("expected session to be revoked")
		}
	})

	t.Run("maps an unknown token to invalid credentials", func(t *testing.T) {
		svc := NewAuthService(&accountStoreStub{}, newSessionStoreStub(), nil, nil, fixedNow, time.Hour)

		err := svc.RevokeSession(context.Background(), "token-unknown")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
