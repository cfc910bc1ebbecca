package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	confirmationIssuer   = "asistitravel"
	confirmationAudience = "email-confirmation"
	// ConfirmationTokenTTL bounds how long a sign-up link stays valid
	ConfirmationTokenTTL = 24 * time.Hour
)

// ConfirmationClaims are carried by the link sent after sign-up
type ConfirmationClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// IssueConfirmationToken signs a confirmation token for userID
func IssueConfirmationToken(secret, userID, email string, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("confirmation secret is empty")
	}

	claims := ConfirmationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    confirmationIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{confirmationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ConfirmationTokenTTL)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation token: %w", err)
	}
	return signed, nil
}

// ParseConfirmationToken verifies signature, issuer, audience and expiry
func ParseConfirmationToken(secret, tokenString string) (*ConfirmationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ConfirmationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(confirmationIssuer),
		jwt.WithAudience(confirmationAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfirmationToken, err)
	}

	claims, ok := token.Claims.(*ConfirmationClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidConfirmationToken
	}
	return claims, nil
}
