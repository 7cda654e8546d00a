package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"mechanic-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for every token failure - bad signature,
// wrong issuer or audience, expiry - so the response never reveals
// which check rejected the token.
var ErrUnauthorized = errors.New("invalid or expired token")

// TokenService issues and validates self-contained bearer tokens.
// Tokens are stateless: there is no session store and no revocation
// before natural expiry.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	expires := cfg.ExpiresMin
	if expires <= 0 {
		expires = 60
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      time.Duration(expires) * time.Minute,
	}
}

type customerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token binding requests to the given customer identity.
func (s *TokenService) Issue(customerID int) (string, error) {
	now := time.Now().UTC()
	claims := customerClaims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(customerID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, issuer, audience and expiry, returning the
// customer id the token was issued for.
func (s *TokenService) Validate(tokenString string) (int, error) {
	claims := &customerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrUnauthorized
	}

	customerID, err := strconv.Atoi(claims.Subject)
	if err != nil || customerID <= 0 {
		return 0, ErrUnauthorized
	}
	return customerID, nil
}
