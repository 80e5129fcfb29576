package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the verified caller.
const ContextIdentityKey = "identity"

var errAuthRequired = appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")

// TokenVerifier validates a bearer token and returns its payload.
type TokenVerifier interface {
	Verify(token string) (models.TokenPayload, error)
}

// Authenticate requires a valid bearer token of any purpose and attaches the caller.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "no token provided"))
			return
		}

		payload, err := tokens.Verify(token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextIdentityKey, newIdentity(c, payload))
		c.Next()
	}
}

// OptionalAuthenticate attaches the caller when a valid token is present but never blocks.
func OptionalAuthenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if payload, err := tokens.Verify(token); err == nil {
				c.Set(ContextIdentityKey, newIdentity(c, payload))
			}
		}
		c.Next()
	}
}

// RequireAccess rejects requests that are unauthenticated or carry a non-access token.
func RequireAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAccess(c); !ok {
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the caller attached by Authenticate.
func IdentityFrom(c *gin.Context) (*models.RequestIdentity, bool) {
	value, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*models.RequestIdentity)
	return identity, ok && identity != nil
}

// AccessClaimsFrom returns the caller's access claims. It reports false for reset tokens.
func AccessClaimsFrom(c *gin.Context) (models.AccessClaims, bool) {
	identity, ok := IdentityFrom(c)
	if !ok {
		return models.AccessClaims{}, false
	}
	return identity.AsAccess()
}

func requireAccess(c *gin.Context) (models.AccessClaims, bool) {
	claims, ok := AccessClaimsFrom(c)
	if !ok {
		response.Abort(c, errAuthRequired)
		return models.AccessClaims{}, false
	}
	return claims, true
}

func newIdentity(c *gin.Context, payload models.TokenPayload) *models.RequestIdentity {
	return &models.RequestIdentity{
		TokenPayload: payload,
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
