package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"storefront/models"
)

const (
	ctxUserID   = "userId"
	ctxRole     = "role"
	ctxToken    = "token"
	ctxTokenExp = "tokenExp"
)

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenChecker reports whether a token was revoked by logout.
type TokenChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func IssueToken(secret []byte, userID, role string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// BearerToken reads the token from the Authorization header, falling back to
// the token query parameter for websocket clients that cannot set headers.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if h != "" {
		return h
	}
	return c.Query("token")
}

func AuthMiddleware(secret []byte, revoked TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Token required")
			return
		}

		if revoked != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			isRevoked, err := revoked.IsRevoked(ctx, tokenString)
			cancel()
			if err != nil {
				abort(c, http.StatusInternalServerError, "Failed to verify token")
				return
			}
			if isRevoked {
				abort(c, http.StatusUnauthorized, "Token has been blacklisted")
				return
			}
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RoleLookup reports a user's current role so that a demotion takes effect
// before the user's token expires.
type RoleLookup interface {
	Role(ctx context.Context, userID string) (string, error)
}

// AdminMiddleware admits callers whose token carries the admin role. With a
// non-nil lookup the stored role must still be admin as well.
func AdminMiddleware(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != models.RoleAdmin {
			abort(c, http.StatusForbidden, "Access denied: admin only")
			return
		}
		if roles != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			role, err := roles.Role(ctx, c.GetString(ctxUserID))
			cancel()
			if err != nil {
				abort(c, http.StatusInternalServerError, "Failed to verify role")
				return
			}
			if role != models.RoleAdmin {
				c.Set(ctxRole, role)
				abort(c, http.StatusForbidden, "Access denied: admin only")
				return
			}
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

func IsAdmin(c *gin.Context) bool { return c.GetString(ctxRole) == models.RoleAdmin }

// Token returns the raw token and its expiry for the authenticated request.
func Token(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxToken), c.GetTime(ctxTokenExp)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(secret []byte, revoked TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.Next()
			return
		}
		if revoked != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			isRevoked, err := revoked.IsRevoked(ctx, tokenString)
			cancel()
			if err != nil || isRevoked {
				c.Next()
				return
			}
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}
