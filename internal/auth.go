package internal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

const (
	loginFlightKey = "login"
	hexDigits      = "0123456789ABCDEF"

	// loginTimeout bounds a shared login once it no longer follows the
	// context of the caller that started it.
	loginTimeout = 60 * time.Second
)

// Querier sends one GraphQL operation and decodes its data into out.
type Querier interface {
	Execute(ctx context.Context, op Operation, loginRequired bool, out any) error
}

// Authenticator owns the credential pair and the current bearer token.
//
// The token is absent until the first successful Login and is only ever
// replaced by a later successful Login. Concurrent logins share a single
// in-flight request.
type Authenticator struct {
	querier  Querier
	email    string
	password string
	logger   *slog.Logger

	mu    sync.RWMutex
	token *oauth2.Token

	flight singleflight.Group
}

// NewAuthenticator creates a session manager that logs in through querier.
func NewAuthenticator(querier Querier, email, password string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		querier:  querier,
		email:    email,
		password: password,
		logger:   loggerOrDiscard(logger),
	}
}

// Token returns the current token, if one is held. The returned value is
// never mutated; a later login replaces it.
func (a *Authenticator) Token() (*oauth2.Token, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == nil || a.token.AccessToken == "" {
		return nil, false
	}
	return a.token, true
}

// Tokens returns the full token set from the last login.
func (a *Authenticator) Tokens() (types.LoginTokens, bool) {
	token, ok := a.Token()
	if !ok {
		return types.LoginTokens{}, false
	}
	idToken, _ := token.Extra("id_token").(string)
	return types.LoginTokens{
		AccessToken:  token.AccessToken,
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
	}, true
}

// Login exchanges the credentials for a new access token.
// Callers arriving while a login is in flight wait for it and share its result.
func (a *Authenticator) Login(ctx context.Context) error {
	return a.renew(ctx, func() bool { return true })
}

// Renew logs in again unless the token the caller held has already been
// replaced. stale is the token the server rejected, or empty when the caller
// held none; in both cases a token issued since then is reused without a
// network round trip.
func (a *Authenticator) Renew(ctx context.Context, stale string) error {
	return a.renew(ctx, func() bool {
		current, ok := a.Token()
		return !ok || current.AccessToken == stale
	})
}

// renew evaluates needed inside the flight so a caller that arrives just
// after a login completed does not start another one.
//
// The shared login runs detached from the cancellation of whichever caller
// started it, bounded by loginTimeout. Each caller still stops waiting when
// its own context ends.
func (a *Authenticator) renew(ctx context.Context, needed func() bool) error {
	if err := ctx.Err(); err != nil {
		return &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}

	result := a.flight.DoChan(loginFlightKey, func() (any, error) {
		if !needed() {
			a.logger.Debug("session already renewed by another caller")
			return nil, nil
		}
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loginTimeout)
		defer cancel()
		return nil, a.login(loginCtx)
	})

	select {
	case <-ctx.Done():
		a.logger.Debug("stopped waiting for login", "error", ctx.Err())
		return &pkgerrs.UnknownError{Message: msgUnknown, Err: ctx.Err()}
	case res := <-result:
		if res.Shared {
			a.logger.Debug("joined in-flight login")
		}
		return res.Err
	}
}

func (a *Authenticator) login(ctx context.Context) error {
	passcode, err := BuildPasscode(a.email, a.password)
	if err != nil {
		loginsTotal.WithLabelValues(outcomeError).Inc()
		return err
	}

	var data types.LoginResponseData
	if err := a.querier.Execute(ctx, LoginOperation(passcode), false, &data); err != nil {
		loginsTotal.WithLabelValues(outcomeError).Inc()
		a.logger.Info("login failed", "error", err)
		return err
	}

	tokens := data.Login.User.Tokens
	if tokens.AccessToken == "" {
		loginsTotal.WithLabelValues(outcomeError).Inc()
		a.logger.Warn("login response carried no access token")
		return nil
	}

	token := (&oauth2.Token{
		AccessToken:  tokens.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: tokens.RefreshToken,
	}).WithExtra(map[string]any{"id_token": tokens.IDToken})

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	loginsTotal.WithLabelValues(outcomeSuccess).Inc()
	a.logger.Info("logged in")
	return nil
}

// BuildPasscode encodes the credentials the way the login operation expects:
// base64(percentEscape(JSON({email, password}))).
func BuildPasscode(email, password string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	jsonText := strings.TrimSuffix(buf.String(), "\n")
	return base64.StdEncoding.EncodeToString([]byte(percentEscape(jsonText))), nil
}

// percentEscape escapes every byte outside A-Z a-z 0-9 and -_.!~*'() as %XX.
// Spaces become %20, not '+'.
func percentEscape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
