// Package auth protects the admin endpoints with a single
// environment-configured account and a per-process session token.
package auth

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

const sessionCookieName = "admin_session_token"

// Service validates admin credentials and issues session tokens. The token
// is generated at startup, so restarting the server invalidates existing
// sessions.
type Service struct {
	username string
	password string
	token    string
}

// NewFromEnv builds the Service from ADMIN_USERNAME and ADMIN_PASSWORD.
func NewFromEnv() (*Service, error) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth: ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}
	return &Service{
		username: username,
		password: password,
		token:    uuid.New().String(),
	}, nil
}

// check reports whether the given credentials match the configured account.
func (s *Service) check(username, password string) bool {
	return username == s.username && password == s.password
}
