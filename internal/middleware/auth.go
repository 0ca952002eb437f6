// Package middleware provides authentication, logging, metrics and rate limiting middleware.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fakex/internal/config"
	"fakex/internal/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const claimsLocal = "claims"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// JWTVerifier validates RS256 tokens against a fixed issuer and audience.
// Profile claims are read from the audience namespace, e.g. "<audience>/email".
type JWTVerifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	audience string
}

// NewJWTVerifier returns a verifier resolving signing keys through keyfunc.
func NewJWTVerifier(keyfunc jwt.Keyfunc, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{keyfunc: keyfunc, issuer: issuer, audience: audience}
}

// NewJWKSVerifier fetches the issuer key set and keeps it refreshed until ctx ends.
func NewJWKSVerifier(ctx context.Context, cfg *config.Config) (*JWTVerifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL()})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", cfg.JWKSURL(), err)
	}
	return NewJWTVerifier(jwks.Keyfunc, cfg.IssuerURL(), cfg.Auth0Audience), nil
}

// Verify checks signature, algorithm, issuer, audience and expiry.
func (v *JWTVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Claims{
		Subject: subject,
		Name:    v.customClaim(claims, "name"),
		Email:   v.customClaim(claims, "email"),
		Picture: v.customClaim(claims, "picture"),
	}, nil
}

func (v *JWTVerifier) customClaim(claims jwt.MapClaims, name string) string {
	value, _ := claims[v.audience+"/"+name].(string)
	return strings.TrimSpace(value)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}
		return authenticate(c, verifier)
	}
}

// OptionalAuth lets requests without an Authorization header through anonymously.
// A header that is present must still carry a valid token.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return authenticate(c, verifier)
	}
}

func authenticate(c *fiber.Ctx, verifier TokenVerifier) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid authorization header format"))
	}

	ctx := c.UserContext()
	claims, err := verifier.Verify(ctx, strings.TrimSpace(parts[1]))
	if err != nil {
		Logger.InfoContext(ctx, "token rejected", "error", err)
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	c.Locals(claimsLocal, claims)
	c.SetUserContext(context.WithValue(ctx, SubjectKey, claims.Subject))
	return c.Next()
}

// ClaimsFrom returns the verified claims stored by RequireAuth or OptionalAuth.
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsLocal).(*Claims)
	return claims, ok && claims != nil
}
