package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/store"
)

var (
	// ErrInvalidCredentials is returned for unknown ids and wrong secrets
	// alike; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleMismatch means the id/secret pair is valid for a different role.
	ErrRoleMismatch = errors.New("credentials valid for a different role")
	// ErrPasswordTooShort rejects new secrets below the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
)

type Claims struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates principals against the user collection and keeps the
// current session as a signed token in the Record Store's session slot.
type Service struct {
	store *store.Store
	hmac  []byte
	ttl   time.Duration
	now   func() time.Time
}

func NewService(st *store.Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{store: st, hmac: []byte(secret), ttl: ttl, now: time.Now}
}

// Login matches id and secret against the user collection. On success it
// stamps last-login, persists the user, and stores a session token. The role
// argument is the role the caller's screen expects: a valid pair with the
// wrong role yields ErrRoleMismatch, everything else ErrInvalidCredentials.
func (a *Service) Login(ctx context.Context, id, secret string, role model.Role) (model.User, error) {
	u, err := a.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Secret), []byte(secret)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	if u.Role != role {
		return model.User{}, ErrRoleMismatch
	}

	now := a.now()
	u.LastLogin = &now
	if err := a.store.UpdateUser(ctx, u); err != nil {
		return model.User{}, err
	}

	tok, err := a.issueToken(u)
	if err != nil {
		return model.User{}, err
	}
	if err := a.store.SetSessionToken(ctx, tok); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout tears the session slot down.
func (a *Service) Logout(ctx context.Context) error {
	return a.store.ClearSession(ctx)
}

// CurrentUser resolves the logged-in principal from the session slot. A
// missing, expired, or tampered token reads as nobody logged in, as does a
// principal deleted since login.
func (a *Service) CurrentUser(ctx context.Context) (model.User, bool, error) {
	tok, err := a.store.SessionToken(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	if tok == "" {
		return model.User{}, false, nil
	}
	claims, err := a.parse(tok)
	if err != nil {
		return model.User{}, false, nil
	}
	u, err := a.store.UserByID(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	return u, true, nil
}

// ChangePassword verifies the current secret before replacing it with a
// bcrypt hash of the new one.
func (a *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := a.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Secret), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < 4 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), 12)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Secret = string(hash)
	return a.store.UpdateUser(ctx, u)
}

func (a *Service) issueToken(u model.User) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:  u.ID,
		Name: u.Name,
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cafsi-portal",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *Service) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return c, nil
}
