// Package auth mints and checks the JWTs the identity server hands out:
// access tokens for a signed-in user and reset tokens embedded in password
// reset links.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes.
const (
	PurposeAccess = "access"
	PurposeReset  = "reset"
)

// Claims carries the standard claims plus the subject's user id and the
// token purpose, so a reset token cannot be replayed as an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
}

func sign(c Claims, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secretKey)
}

// GenerateToken issues an access token for userID.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return sign(Claims{UserID: userID, Purpose: PurposeAccess}, secretKey, validityDuration)
}

// GenerateResetToken issues a token authorizing one password change for the
// given account.
func GenerateResetToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return sign(Claims{UserID: userID, Email: email, Purpose: PurposeReset}, secretKey, validityDuration)
}

func parse(tokenString string, secretKey []byte, purpose string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", common.ErrInvalidOrExpiredToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidOrExpiredToken, err)
	}

	if !token.Valid || claims.Purpose != purpose || claims.UserID == "" {
		return nil, common.ErrInvalidOrExpiredToken
	}

	return claims, nil
}

// GetUserIDFromToken validates an access token and returns its user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	c, err := parse(tokenString, secretKey, PurposeAccess)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

// ParseResetToken validates a reset token and returns its claims.
func ParseResetToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey, PurposeReset)
}
