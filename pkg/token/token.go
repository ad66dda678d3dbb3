// Package token resolves physical badge tokens to player identities.
//
// Badges carry either the player id in plain text or a signed claim minted
// by this service. Resolve accepts both forms so legacy plain badges keep
// working alongside signed ones.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signedPrefix = "fxh."

// Claims represents the signed badge token claims
type Claims struct {
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// Service mints and resolves badge tokens
type Service struct {
	secretKey []byte
	issuer    string
}

// NewService creates a new badge token service
func NewService(secretKey string, issuer string) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Mint produces a signed badge token for a player id. Badge tokens do not
// expire; a badge is a physical artifact reprinted only when reissued.
func (s *Service) Mint(playerID string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("player id cannot be empty")
	}

	claims := Claims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  playerID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return signedPrefix + signed, nil
}

// Resolve maps a scanned badge token to a player id. A token without the
// signed prefix is treated as a plain badge carrying the id itself.
func (s *Service) Resolve(scanned string) (string, error) {
	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return "", fmt.Errorf("scanned token cannot be empty")
	}

	if !strings.HasPrefix(scanned, signedPrefix) {
		return scanned, nil
	}

	raw := strings.TrimPrefix(scanned, signedPrefix)
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid badge token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	if claims.PlayerID == "" {
		return "", fmt.Errorf("badge token carries no player id")
	}

	return claims.PlayerID, nil
}
