package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"mealplan-admin-service/internal/auth"
	"mealplan-admin-service/pkg/response"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID string
	Email  string
	Name   string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}

	payload := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}
	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}
	response.JSON(w, status, payload)
}

// AdminAuth admits only callers whose session token verifies and whose email
// the policy lists as an administrator.
func AdminAuth(policy *auth.AdminPolicy, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := policy.Authenticate(token, jwtSecret)
			switch {
			case errors.Is(err, auth.ErrNotAdmin):
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			case err != nil:
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}

			authCtx := &AuthContext{UserID: claims.UserID, Email: claims.Email}
			if claims.Name != nil {
				authCtx.Name = *claims.Name
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}
