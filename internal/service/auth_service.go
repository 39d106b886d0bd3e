package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/session"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

// SessionStore is the server-side session record backend (redis in
// production, fakes in tests).
type SessionStore interface {
	Put(ctx context.Context, id string, rec session.Record) error
	Get(ctx context.Context, id string) (*session.Record, error)
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	log        zerolog.Logger
	users      repository.UserRepository
	sessions   SessionStore
	secret     string
	sessionTTL time.Duration
}

func NewAuthService(log zerolog.Logger, users repository.UserRepository, sessions SessionStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{log: log, users: users, sessions: sessions, secret: secret, sessionTTL: ttl}
}

// Register creates a profile. Self-registration is only allowed for staff;
// other roles must be created through the admin surface.
func (a *AuthService) Register(ctx context.Context, username, name, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || name == "" || len(password) < 6 {
		return nil, errors.New("invalid input")
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role != string(models.RoleStaff) {
		role = string(models.RoleStaff)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, username, name, role, hash)
}

// CreateUser is the admin path: any valid role is allowed.
func (a *AuthService) CreateUser(ctx context.Context, username, name, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || name == "" || len(password) < 6 {
		return nil, errors.New("invalid input")
	}
	if !models.ValidRole(role) {
		return nil, errors.New("unknown role")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, username, name, role, hash)
}

// Login verifies credentials, issues a signed token and stores the
// server-side session record under the token's jti.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, hash, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.Active {
		return "", nil, apperr.ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, apperr.ErrInvalidCredentials
	}

	tok, sid, err := utils.SignJWT(a.secret, u.ID, string(u.Role), a.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	if err := a.sessions.Put(ctx, sid, session.Record{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: time.Now(),
	}); err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Logout revokes the session record. Store failures are logged and
// swallowed: the client-side logged-out state always wins.
func (a *AuthService) Logout(ctx context.Context, token string) {
	claims, err := utils.ParseJWT(a.secret, token)
	if err != nil {
		return
	}
	if err := a.sessions.Delete(ctx, claims.ID); err != nil {
		a.log.Warn().Err(err).Msg("session delete failed during logout")
	}
}

// Resolve turns a bearer token into the current user. The token must parse
// AND its session record must still exist; otherwise the request is
// unauthenticated.
func (a *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ParseJWT(a.secret, token)
	if err != nil {
		return nil, apperr.ErrNotAuthenticated
	}
	rec, err := a.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	u, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, apperr.ErrNotAuthenticated
	}
	return u, nil
}

// HasPermission is a pure predicate: false without a user or with an empty
// role set, otherwise membership of the user's role in the set.
func (a *AuthService) HasPermission(u *models.User, roles []models.Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
