package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/auth"
	"github.com/duccv/medrecords-api/internal/constant"
)

// TokenValidator returns the subject of a valid bearer token.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// IdentityResolver maps a token subject to the account behind it.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, subject string) (auth.Identity, error)
}

// Authenticator establishes the request identity from a bearer token.
type Authenticator struct {
	tokens   TokenValidator
	resolver IdentityResolver
	logger   *zap.Logger
}

func NewAuthenticator(tokens TokenValidator, resolver IdentityResolver) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		resolver: resolver,
		logger:   zap.L(),
	}
}

// Authenticate never rejects a request. With a valid token it attaches the
// identity to the request context; with a rejected token it records why, so
// RequireAuth can answer precisely. Either way the chain continues.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(constant.HeaderAuthorization))
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		subject, err := a.tokens.Validate(token)
		if err == nil {
			var id auth.Identity
			id, err = a.resolver.ResolveIdentity(ctx, subject)
			if err == nil {
				c.Request = c.Request.WithContext(auth.WithIdentity(ctx, id))
				c.Next()
				return
			}
		}

		a.logger.Debug("Bearer token rejected",
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", getClientIP(c)),
			zap.Error(err))
		c.Request = c.Request.WithContext(auth.WithFailure(ctx, err))
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header of the form
// "Bearer <token>".
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, constant.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(constant.BearerPrefix):])
	return token, token != ""
}
