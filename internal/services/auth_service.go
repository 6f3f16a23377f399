package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/formloop/formloop/internal/models"
)

// AuthStore abstracts the credential persistence needed by AuthService.
type AuthStore interface {
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)
	AddUser(u *models.User) error
}

// TokenSigner issues a signed session token for the given identity.
type TokenSigner func(userID, email, name string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(n int) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token string
	User  *models.User
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     shortID,
		signToken: signer,
		tokenTTL:  7 * 24 * time.Hour,
	}
}

func (s *AuthService) Register(email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || strings.TrimSpace(password) == "" || name == "" {
		return nil, NewInvalidError("email, password and name are required")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           s.idGen(12),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    s.now(),
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	token, err := s.signToken(u.ID, u.Email, u.Name, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, NewInvalidError("email and password are required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	// Same response for unknown email and wrong password.
	if u == nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}
	token, err := s.signToken(u.ID, u.Email, u.Name, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

// CurrentUser resolves a session's user id back to the stored record.
// The user may have been removed since the token was issued.
func (s *AuthService) CurrentUser(userID string) (*models.User, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("not authenticated")
	}
	u, err := s.store.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewNotFoundError("user not found")
	}
	return u, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
