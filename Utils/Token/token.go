package Token

import (
	"errors"
	"os"
	"time"

	"github.com/gweakliem/crane-beta/Constants"
	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionUser is the admin/therapist payload carried inside a session token.
type SessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SessionClient is the client payload. TherapistID pins the owning therapist.
type SessionClient struct {
	ID          uint   `json:"id"`
	TherapistID uint   `json:"therapist_id"`
	Name        string `json:"name"`
}

// AuthSession carries exactly one of User or Client, never both, plus an
// absolute expiry instant.
type AuthSession struct {
	User    *SessionUser   `json:"user,omitempty"`
	Client  *SessionClient `json:"client,omitempty"`
	Expires time.Time      `json:"expires"`
}

type sessionClaims struct {
	User    *SessionUser   `json:"user,omitempty"`
	Client  *SessionClient `json:"client,omitempty"`
	Expires time.Time      `json:"expires"`
	jwt.RegisteredClaims
}

func apiSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func NewUserSession(user SessionUser) AuthSession {
	return AuthSession{
		User:    &user,
		Expires: time.Now().Add(Constants.UserSessionDuration),
	}
}

func NewClientSession(client SessionClient) AuthSession {
	return AuthSession{
		Client:  &client,
		Expires: time.Now().Add(Constants.ClientSessionDuration),
	}
}

// GenerateToken signs the session with the server secret. The JWT expiry is
// derived from the session's absolute expires instant.
func GenerateToken(session AuthSession) (string, error) {
	if len(apiSecret()) == 0 {
		return "", errors.New("JWT_SECRET is not configured")
	}

	claims := sessionClaims{
		User:    session.User,
		Client:  session.Client,
		Expires: session.Expires,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.Expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(apiSecret())
}

// VerifyToken decodes a session token, returning nil on any failure: malformed
// token, bad signature, or lapsed JWT expiry.
func VerifyToken(tokenStr string) *AuthSession {
	if tokenStr == "" || len(apiSecret()) == 0 {
		return nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return apiSecret(), nil
	})

	if err != nil || !token.Valid {
		return nil
	}

	return &AuthSession{
		User:    claims.User,
		Client:  claims.Client,
		Expires: claims.Expires,
	}
}

// IsValid re-checks the business-level expiry against the wall clock. This is
// deliberately independent of the JWT's own exp check; both must hold.
func (session *AuthSession) IsValid() bool {
	if session == nil || session.Expires.IsZero() {
		return false
	}
	return session.Expires.After(time.Now())
}
