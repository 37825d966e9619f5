// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidRememberToken is returned for malformed, forged or expired
// remember-me tokens.
var ErrInvalidRememberToken = errors.New("auth: invalid remember token")

// rememberClaims are the JWT claims of a remember-me token.
type rememberClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// RememberTokens issues and verifies the long-lived remember-me JWTs
// that re-establish sessions after the session cookie expires.
type RememberTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewRememberTokens creates a token issuer. The secret must be distinct
// from the session secret so a leaked remember token cannot be reused
// elsewhere.
func NewRememberTokens(secret []byte, ttl time.Duration) *RememberTokens {
	return &RememberTokens{secret: secret, ttl: ttl}
}

// Issue signs a remember-me token for the user.
func (r *RememberTokens) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now().UTC()
	claims := rememberClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
			ID:        uuid.New().String(),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign remember token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a remember-me token, returning the user
// identity it carries.
func (r *RememberTokens) Verify(tokenString string) (uuid.UUID, string, error) {
	var claims rememberClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidRememberToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidRememberToken
	}
	return userID, claims.Username, nil
}
