package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"proofpop/internal/config"
)

// SiteIDKey is the echo context key holding the authenticated site.
const SiteIDKey = "site_id"

// SecretSource looks up a site's encrypted ingest secret.
type SecretSource interface {
	IngestSecret(ctx context.Context, siteID string) (string, error)
}

// IngestClaims are carried by server-to-server ingest tokens. Merchants
// sign them with HS256 and their site's ingest secret.
type IngestClaims struct {
	SiteID string `json:"site_id"`
	jwt.RegisteredClaims
}

type IngestAuth struct {
	secrets SecretSource
	decrypt func(ctx context.Context, encrypted string) (string, error)
}

func NewIngestAuth(secrets SecretSource) *IngestAuth {
	return &IngestAuth{secrets: secrets, decrypt: config.DecryptSecret}
}

// Middleware verifies the bearer token and stores the site id under
// SiteIDKey.
func (a *IngestAuth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is required"})
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format"})
		}

		ctx := c.Request().Context()
		claims := &IngestClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			if claims.SiteID == "" {
				return nil, errors.New("missing site_id claim")
			}
			return a.key(ctx, claims.SiteID)
		})
		if err != nil || !token.Valid {
			slog.Debug("Rejected ingest token", "error", err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		}

		c.Set(SiteIDKey, claims.SiteID)
		return next(c)
	}
}

func (a *IngestAuth) key(ctx context.Context, siteID string) ([]byte, error) {
	encrypted, err := a.secrets.IngestSecret(ctx, siteID)
	if err != nil {
		return nil, err
	}
	secret, err := a.decrypt(ctx, encrypted)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}
