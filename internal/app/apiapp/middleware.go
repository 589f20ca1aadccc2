package apiapp

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/Oohan21/utopia-drafts/internal/services/auth"
	httperrors "github.com/Oohan21/utopia-drafts/internal/transport/http/errors"
)

// Uploads can take a while on slow links, so the per-request budget is generous.
const requestTimeout = 2 * time.Minute

type tokenVerifier interface {
	ParseAccessToken(raw string) (authsvc.AccessClaims, error)
}

type middlewareUser interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}

func ApplyMiddlewares(r middlewareUser, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
}

// AuthMiddleware resolves the bearer token into the draft owner identity.
func AuthMiddleware(tokens tokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				httperrors.WriteError(w, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "token verification is not configured")
				return
			}

			raw, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="drafts"`)
				httperrors.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				if log != nil {
					log.Debug("rejected access token",
						zap.String("request_id", chimiddleware.GetReqID(r.Context())),
						zap.Error(err),
					)
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="drafts", error="invalid_token"`)
				httperrors.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// noStore keeps draft snapshots and previews out of shared caches.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.Duration("duration", time.Since(start)),
			}
			if status >= http.StatusInternalServerError {
				log.Warn("draft api request failed", fields...)
				return
			}
			log.Debug("draft api request", fields...)
		})
	}
}
