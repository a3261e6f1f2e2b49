package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/taskbingo-server/internal/config"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
	CtxRequestId
)

// Auth attaches the session claims of a valid cookie pair to the request
// context. Requests with unreadable cookies get them cleared and continue
// anonymously.
func Auth(logger *slog.Logger, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ParseSessionClaims(r)
			if err != nil {
				if _, cerr := r.Cookie("auth"); cerr == nil {
					logger.Debug("dropping unreadable session cookies", slog.Any("error", err))
					cookies.Clear(w)
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionClaims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*config.SessionClaims)
	return claims, ok
}
