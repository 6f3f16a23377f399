package services

import (
	"strings"
	"testing"
	"time"

	"github.com/formloop/formloop/internal/models"
)

type authStubStore struct {
	users map[string]*models.User // by id
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{users: map[string]*models.User{}}
}

func (s *authStubStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *authStubStore) FindUserByID(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *authStubStore) AddUser(u *models.User) error {
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func stubSigner(userID, email, name string, ttl time.Duration) (string, error) {
	return "token:" + userID, nil
}

func TestAuthRegisterAndLogin(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)
	svc.now = func() time.Time { return time.Unix(0, 0) }

	res, err := svc.Register("admin@example.com", "Secret123", "Ada")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.ID == "" || res.User.Role != "admin" {
		t.Fatalf("unexpected user in result: %+v", res.User)
	}
	if res.Token != "token:"+res.User.ID {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if string(res.User.PasswordHash) == "Secret123" {
		t.Fatalf("password stored in the clear")
	}

	if _, err := svc.Register("admin@example.com", "Other456", "Ada"); err == nil {
		t.Fatalf("expected conflict on duplicate registration")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}

	loginRes, err := svc.Login("admin@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loginRes.Token == "" {
		t.Fatalf("expected token in login result")
	}
}

func TestAuthLoginFailuresAreIdentical(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)
	if _, err := svc.Register("admin@example.com", "Secret123", "Ada"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, wrongPass := svc.Login("admin@example.com", "nope")
	_, unknownUser := svc.Login("ghost@example.com", "Secret123")
	for _, err := range []error{wrongPass, unknownUser} {
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPass, unknownUser)
	}
}

func TestAuthValidation(t *testing.T) {
	svc := NewAuthService(newAuthStubStore(), stubSigner)
	if _, err := svc.Register("", "", ""); err == nil {
		t.Fatalf("expected validation error on empty register")
	}
	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("expected validation error on empty login")
	}
}

func TestAuthCurrentUser(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)
	res, err := svc.Register("admin@example.com", "Secret123", "Ada")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	u, err := svc.CurrentUser(res.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := svc.CurrentUser("gone"); err == nil {
		t.Fatalf("expected not found for removed user")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found code, got %v", err)
	}
	if _, err := svc.CurrentUser(""); err == nil {
		t.Fatalf("expected unauthorized for empty id")
	}
}
