package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"agenda/config"

	"github.com/golang-jwt/jwt"
)

const (
	RoleAdmin  = "admin"
	RoleMaster = "master"
)

// SessionClaims is what a PIN login token carries.
type SessionClaims struct {
	Subject string // professional id for admins, "master" for the setup screen
	Role    string
	Expires time.Time
}

func secretKey() []byte {
	if s := config.AppConfig.JWTSecret; s != "" {
		return []byte(s)
	}
	return []byte("agenda-dev-secret")
}

// GenerateToken creates a signed JWT for subject with the given role.
// The token expires after the specified duration.
func GenerateToken(subject, role string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ParseSessionToken validates the token and extracts subject and role.
func ParseSessionToken(tokenString string) (SessionClaims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return SessionClaims{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return SessionClaims{}, errors.New("token does not contain a valid 'sub' or 'role' claim")
	}
	var exp time.Time
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	return SessionClaims{Subject: sub, Role: role, Expires: exp}, nil
}
