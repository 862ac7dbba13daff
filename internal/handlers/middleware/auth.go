package middleware

import (
	"net/http"
	"strings"

	"github.com/nkiryanov/fideliza/internal/handlers/principalctx"
	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/models"
)

const bearerPrefix = "Bearer "

type tokenParser interface {
	// Has to return error if token is not valid or expired
	ParseAccess(access string) (models.Principal, error)
}

// Require bearer access token and put its principal to request context
func AuthMiddleware(tp tokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			p, err := tp.ParseAccess(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := principalctx.New(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
