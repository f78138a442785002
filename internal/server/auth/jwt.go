// Package auth mints and checks the bearer tokens that scope every REST and
// push request to a single owner.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every token and required when reading one back.
const Issuer = "moviekeeper"

// IssueToken signs an HS256 token naming ownerID as its subject.
func IssueToken(ownerID string, key []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(Issuer),
	jwt.WithExpirationRequired(),
)

// OwnerFromToken returns the owner a token was issued for.
// common.ErrTokenExpired and common.ErrInvalidToken tell the two failure
// kinds apart.
func OwnerFromToken(token string, key []byte) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return key, nil })
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", common.ErrTokenExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	case claims.Subject == "":
		return "", fmt.Errorf("%w: no subject", common.ErrInvalidToken)
	}
	return claims.Subject, nil
}
