package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidIntakeToken = errors.New("invalid or expired intake link")

const intakeTokenAudience = "client-intake"

// IntakeClaims identify the client an intake link was issued for
type IntakeClaims struct {
	WorkspaceID string `json:"wid"`
	ClientID    string `json:"cid"`
	jwt.RegisteredClaims
}

// IssueIntakeToken signs an HS256 intake link token valid for ttl
func IssueIntakeToken(secret []byte, workspaceID, clientID string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("intake signing secret is empty")
	}
	claims := IntakeClaims{
		WorkspaceID: workspaceID,
		ClientID:    clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{intakeTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign intake token: %w", err)
	}
	return signed, nil
}

// ParseIntakeToken verifies signature, audience and expiry
func ParseIntakeToken(secret []byte, token string) (*IntakeClaims, error) {
	claims := &IntakeClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	},
		jwt.WithAudience(intakeTokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(2*time.Minute),
	)
	if err != nil || !parsed.Valid || claims.ClientID == "" {
		return nil, ErrInvalidIntakeToken
	}
	return claims, nil
}
