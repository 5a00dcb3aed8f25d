// Package auth provides JWT bearer-token middleware. Token issuance and
// session persistence live outside this service; the middleware only
// verifies signatures and exposes the caller's identity to handlers.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims carries the authenticated clinician's identity.
type Claims struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	HospitalID string `json:"hospital_id,omitempty"`
	jwt.RegisteredClaims
}

const userContextKey = "auth_user"

// Config holds JWT verification settings.
type Config struct {
	Secret string
}

// Require rejects requests without a valid bearer token.
func Require(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromRequest(c, cfg)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

// Optional attaches the caller's identity when a valid token is present but
// lets anonymous requests through.
func Optional(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := claimsFromRequest(c, cfg); err == nil {
				c.Set(userContextKey, claims)
			}
			return next(c)
		}
	}
}

// DevBypass grants every request an admin identity. Development mode only.
func DevBypass() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(userContextKey, &Claims{UserID: "dev-admin", Name: "Development Admin"})
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(c echo.Context) *Claims {
	claims, _ := c.Get(userContextKey).(*Claims)
	return claims
}

func claimsFromRequest(c echo.Context, cfg Config) (*Claims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errNoToken
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadSigningMethod
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

var (
	errNoToken          = errors.New("no token provided")
	errBadSigningMethod = errors.New("unexpected signing method")
	errInvalidToken     = errors.New("invalid or expired token")
)
