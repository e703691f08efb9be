package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity provider.
type Claims struct {
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Name       string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity used by the workflow.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{
		UserID:      c.Subject,
		Role:        domain.Role(c.Role),
		Department:  c.Department,
		DisplayName: c.Name,
	}
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// An empty issuer disables the issuer check.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	})}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Authorization header format must be Bearer {token}"))
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(msg))
			return
		}
		if !token.Valid {
			logger.Warn("Token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Invalid token"))
			return
		}

		principal := claims.Principal()
		if principal.UserID == "" || !principal.Role.IsValid() {
			logger.Warn("Token claims incomplete", slog.String("role", claims.Role))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Invalid token claims"))
			return
		}

		enrichedLogger := logger.With(
			slog.String("user_id", principal.UserID),
			slog.String("role", string(principal.Role)),
		)
		ctx := WithPrincipal(c.Request.Context(), principal)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
