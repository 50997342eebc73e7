package auth

import (
	"net/http"
	"strings"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/httpx"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

// RequireAuth is a chi middleware that enforces bearer-token authentication.
// It reads the Authorization header, verifies the JWT, and injects the user id
// into the request context. Returns 401 Unauthorized if the token is missing
// or invalid.
//
// After this middleware, handlers can safely call auth.UserIDFromCtx(r.Context()).
func RequireAuth(tokens *TokenManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				log.WarnContext(r.Context(), "invalid bearer token", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
