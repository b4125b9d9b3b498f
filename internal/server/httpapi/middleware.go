package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mkuzmins/authkeeper/internal/common"
	"github.com/mkuzmins/authkeeper/internal/server/tokens"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// requireAccessToken guards a handler with the access-token verification
// strategy. On success the verified claims are stored in the request
// context; refresh tokens are rejected here even when validly signed.
func (s *Server) requireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		claims, err := s.accessVerifier.Verify(token)
		if err != nil {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*tokens.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*tokens.Claims)
	return claims, ok
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withLogging tags every request with a random id and logs method, path,
// status and duration once the handler returns.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, err := common.MakeRandHexString(8)
		if err != nil {
			reqID = "unknown"
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		s.logger.Info(r.Context(), "request handled",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).String(),
		)
	})
}
