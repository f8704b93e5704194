// Package auth manages the operator session on this terminal: online login
// against the remote, an offline unlock path backed by a cached credential
// hash, and the persisted token lifecycle.
package auth

import (
	"context"
	"encoding/json"
	"errors"

	"washpos/internal/connectivity"
	"washpos/internal/gateway"
	"washpos/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoCachedSession means this terminal has never completed an online
	// login, so there is nothing to verify an offline unlock against.
	ErrNoCachedSession = errors.New("no cached session for offline login")
)

type Service interface {
	// Login authenticates online when reachable, otherwise verifies the
	// password against the credential hash cached at the last online login.
	Login(ctx context.Context, email, password string) (*model.User, error)
	Logout(ctx context.Context) error
	// CurrentUser returns the cached operator, or nil when logged out.
	CurrentUser(ctx context.Context) (*model.User, error)
}

type service struct {
	gw      gateway.Gateway
	kv      gateway.KV
	monitor *connectivity.Monitor
}

func New(gw gateway.Gateway, kv gateway.KV, monitor *connectivity.Monitor) Service {
	return &service{gw: gw, kv: kv, monitor: monitor}
}

// cachedCredentials is what offline unlock verifies against. Only the bcrypt
// hash is stored, never the password.
type cachedCredentials struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

func (s *service) Login(ctx context.Context, email, password string) (*model.User, error) {
	if s.monitor.IsOnline() {
		return s.loginOnline(ctx, email, password)
	}
	return s.loginOffline(ctx, email, password)
}

func (s *service) loginOnline(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.gw.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// Cache the session so the terminal stays usable offline. Best-effort:
	// a failed cache write does not fail the login.
	if userJSON, err := json.Marshal(resp.User); err == nil {
		_ = s.kv.SetValue(ctx, model.KeyAuthUser, string(userJSON))
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(password), 12); err == nil {
		creds := cachedCredentials{Email: email, PasswordHash: string(hash)}
		if credsJSON, err := json.Marshal(creds); err == nil {
			_ = s.kv.SetValue(ctx, model.KeyCredentials, string(credsJSON))
		}
	}

	log.Info().Str("user_id", resp.User.ID).Msg("auth: online login")
	return &resp.User, nil
}

func (s *service) loginOffline(ctx context.Context, email, password string) (*model.User, error) {
	raw, err := s.kv.GetValue(ctx, model.KeyCredentials)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoCachedSession
	}
	var creds cachedCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, ErrNoCachedSession
	}
	if creds.Email != email {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoCachedSession
	}
	log.Info().Str("user_id", user.ID).Msg("auth: offline unlock")
	return user, nil
}

func (s *service) Logout(ctx context.Context) error {
	for _, key := range []string{model.KeyAuthToken, model.KeyAuthUser, model.KeyCredentials} {
		if err := s.kv.DeleteValue(ctx, key); err != nil {
			return err
		}
	}
	log.Info().Msg("auth: logged out")
	return nil
}

func (s *service) CurrentUser(ctx context.Context) (*model.User, error) {
	raw, err := s.kv.GetValue(ctx, model.KeyAuthUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, nil
	}
	return &user, nil
}
