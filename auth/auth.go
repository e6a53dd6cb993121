// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Token byte lengths. Session tokens carry more entropy than public poll
// tokens because they gate owner operations.
const (
	SessionTokenBytes = 24
	PublicTokenBytes  = 12
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken creates a random URL-safe token of the given byte length.
func GenerateToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateSessionToken creates a bearer credential for an owner session.
func GenerateSessionToken() (string, error) {
	return GenerateToken(SessionTokenBytes)
}

// GeneratePublicToken creates the unguessable sharing token for a poll.
func GeneratePublicToken() (string, error) {
	return GenerateToken(PublicTokenBytes)
}

// SessionExpired reports whether a session is past its expiry at the
// given instant.
func SessionExpired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}
