// Pawtrail - Pet Location Tracking and Tag Registry
// Copyright 2026 Pawtrail Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pawtrail/pawtrail

package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier validates the configured admin credentials for the
// login endpoint. The password is bcrypt-hashed once at initialization so
// verification never handles the plaintext beyond startup.
type CredentialVerifier struct {
	username     string
	passwordHash []byte
}

// NewCredentialVerifier hashes the configured password and returns a
// verifier.
func NewCredentialVerifier(username, password string) (*CredentialVerifier, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &CredentialVerifier{username: username, passwordHash: hash}, nil
}

// Verify checks the supplied credentials and returns the tenant identifier
// they resolve to (the username). Comparison is constant-time.
func (v *CredentialVerifier) Verify(username, password string) (string, error) {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil

	if !usernameMatch || !passwordMatch {
		return "", fmt.Errorf("invalid username or password")
	}
	return v.username, nil
}
