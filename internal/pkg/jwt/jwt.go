// Package jwt verifies session tokens issued by the hosted identity provider.
package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNoKey        = errors.New("no verification key configured")
)

// Claims are the session claims the API relies on. Subject is the provider's user id.
type Claims struct {
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	Name          string         `json:"name,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Role          string         `json:"role,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

// RoleClaim returns the raw role claim, preferring the top level claim over profile metadata.
func (c *Claims) RoleClaim() string {
	if c.Role != "" {
		return c.Role
	}
	if role, ok := c.Metadata["role"].(string); ok {
		return role
	}
	return ""
}

// Verifier validates HS256 tokens with a shared secret or RS256 tokens with a PEM public key.
type Verifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
}

// NewVerifier creates a verifier. At least one of secret or publicKeyPEM must be set.
func NewVerifier(secret, publicKeyPEM, issuer string) (*Verifier, error) {
	v := &Verifier{issuer: issuer}
	if secret != "" {
		v.secret = []byte(secret)
	}
	if strings.TrimSpace(publicKeyPEM) != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse session public key: %w", err)
		}
		v.publicKey = key
	}
	if v.secret == nil && v.publicKey == nil {
		return nil, ErrNoKey
	}
	return v, nil
}

// Verify parses and validates a session token.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyFunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.publicKey == nil {
			return nil, ErrInvalidToken
		}
		return v.publicKey, nil
	default:
		return nil, ErrInvalidToken
	}
}

// Sign issues an HS256 token for subject. Used for local development sessions and tests.
func (v *Verifier) Sign(subject string, claims Claims, ttl time.Duration) (string, error) {
	if v.secret == nil {
		return "", ErrNoKey
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
