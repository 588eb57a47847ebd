package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewManager(secret string, sessionTTL, resetTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// GenerateSessionToken issues the bearer token returned by register and login.
func (m *Manager) GenerateSessionToken(userID, email, role string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		JTI:    uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) VerifySessionToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GenerateResetToken creates a one-time password-reset secret. The raw value goes
// into the emailed link; only the digest and expiry are persisted.
func (m *Manager) GenerateResetToken() (raw string, digest string, expiresAt time.Time, err error) {
	buf := make([]byte, 20)

	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}

	raw = hex.EncodeToString(buf)
	digest = m.HashResetToken(raw)
	expiresAt = time.Now().UTC().Add(m.resetTTL)

	return raw, digest, expiresAt, nil
}

// HashResetToken is the one-way hash applied before a reset secret touches the
// database. Verification hashes the presented token the same way.
func (m *Manager) HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
