// Package auth issues and verifies the bearer tokens guarding the API.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/server/models"
)

// Claims carries the authenticated principal inside the token, next to the
// standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GenerateToken signs a HS256 token for the given principal.
func GenerateToken(p models.Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// PrincipalFromToken parses and verifies a token string and returns the
// embedded principal. Expired, tampered, or otherwise invalid tokens yield
// common.ErrInvalidToken.
func PrincipalFromToken(tokenString string, secretKey []byte) (*models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &models.Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
