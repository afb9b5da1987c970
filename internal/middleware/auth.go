package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// SessionCookie is the cookie the session token is stored in.
const SessionCookie = "session"

const tokenIssuer = "fintrack-api"

// SessionClaims represents the claims in the session token. The token ID is
// the server-side session ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// IssueToken signs a token for the given session.
func IssueToken(secret string, session *models.Session) (string, error) {
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.UserID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its claims.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("session token has no session id")
	}
	return claims, nil
}

// tokenFromRequest reads the session token from the session cookie, falling
// back to a Bearer Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionAuth verifies the session token, checks the session is still live
// and sets the user and session IDs in the context.
func SessionAuth(secret string, sessions services.SessionServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		session, err := sessions.GetSession(claims.ID)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.StatusCode != http.StatusUnauthorized {
				c.AbortWithStatusJSON(appErr.StatusCode, errorBody(appErr))
				return
			}
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set("userID", session.UserID)
		c.Set("sessionID", session.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(apperrors.WithMessage(apperrors.ErrUnauthorized, message)))
}
