package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims represents the JWT claims carried by a bearer credential
type Claims struct {
	AccountID string `json:"sub"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens
type JWTService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secret, issuer string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("secret key required")
	}
	return &JWTService{
		secretKey: []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
	}, nil
}

// GenerateToken generates a signed token for an account
func (s *JWTService) GenerateToken(accountID, name, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates a token string and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	tokenString = strings.TrimSpace(tokenString)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidClaims)
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account ID", ErrInvalidClaims)
	}

	return claims, nil
}

// CallerContext represents the verified identity attached to a request
type CallerContext struct {
	AccountID string
	Name      string
	Role      string
}

// contextKey for storing the caller context
type contextKey string

const CallerContextKey contextKey = "caller"

// GetCallerFromContext extracts the caller from the request context
func GetCallerFromContext(ctx context.Context) (*CallerContext, error) {
	caller, ok := ctx.Value(CallerContextKey).(*CallerContext)
	if !ok || caller == nil {
		return nil, errors.New("caller not found in context")
	}
	return caller, nil
}

// SetCallerInContext adds the caller to the context
func SetCallerInContext(ctx context.Context, caller *CallerContext) context.Context {
	return context.WithValue(ctx, CallerContextKey, caller)
}
