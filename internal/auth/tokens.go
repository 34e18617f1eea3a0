package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/followmee/crm/internal/config"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints the three credential kinds the service uses: stateless
// HMAC-signed access tokens, opaque refresh-token values persisted as
// sessions, and password-reset tokens whose signing secret folds in the
// user's current password hash so a password change voids them.
type TokenIssuer struct {
	config *config.AuthConfig
	now    func() time.Time
}

func NewTokenIssuer(cfg *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{config: cfg, now: time.Now}
}

func (t *TokenIssuer) IssueAccessToken(user *User, now time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.JWTSecret))
}

func (t *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(t.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// NewRefreshToken returns a fresh opaque token value. The value itself
// carries no claims; it is only meaningful as a session lookup key.
func (t *TokenIssuer) NewRefreshToken() string {
	return uuid.NewString()
}

// resetSecret derives the reset-token signing key from the JWT secret and
// the user's current password hash. Changing the password changes the
// key, which invalidates every outstanding reset token at once.
func (t *TokenIssuer) resetSecret(user *User) []byte {
	return []byte(t.config.JWTSecret + user.PasswordHash)
}

func (t *TokenIssuer) IssueResetToken(user *User, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.config.ResetTokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.resetSecret(user))
}

// VerifyResetToken checks a reset token against the user it is stored on.
func (t *TokenIssuer) VerifyResetToken(tokenString string, user *User) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.resetSecret(user), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
