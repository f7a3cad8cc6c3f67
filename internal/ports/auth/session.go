package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrNoSession = errors.New("no authenticated session")

// Session es la sesión del lado cliente: quién es el usuario actual y con
// qué credencial habla con el backend. Token vacío => modo dev
// (header X-Debug-User-ID).
type Session interface {
	Current(ctx context.Context) (Claims, error)
	AccessToken(ctx context.Context) (string, error)
}

const DebugUserHeader = "X-Debug-User-ID"

// Headers arma los headers de autenticación para requests HTTP/websocket.
func Headers(ctx context.Context, s Session) (map[string]string, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	token, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token = strings.TrimSpace(token); token != "" {
		return map[string]string{"Authorization": "Bearer " + token}, nil
	}

	claims, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrNoSession
	}
	return map[string]string{DebugUserHeader: claims.UserID}, nil
}

// StaticSession es una sesión fija (CLI, tests).
type StaticSession struct {
	UserID string
	Token  string
}

func (s StaticSession) Current(context.Context) (Claims, error) {
	if strings.TrimSpace(s.UserID) == "" {
		return Claims{}, ErrNoSession
	}
	return Claims{UserID: strings.TrimSpace(s.UserID)}, nil
}

func (s StaticSession) AccessToken(context.Context) (string, error) {
	return s.Token, nil
}
