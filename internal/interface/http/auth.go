package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/naluwan/wsa/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("http: invalid bearer token")

// identityMiddleware resolves the caller identity from an Authorization
// bearer token (HS256, subject claim = user ID) and stores it in the request
// context. A request without a token passes through anonymously: endpoints
// that require identity answer 401 from their own validation, so public
// routes like the leaderboard stay public. A present but invalid token is
// rejected here.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Malformed Authorization header")
			return
		}

		userID, err := s.resolveSubject(raw)
		if err != nil {
			s.logger.Warn("bearer token rejected",
				logger.Err(err),
				logger.String("request_id", getRequestID(r.Context())),
			)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveSubject verifies the token signature and returns its subject claim.
func (s *Server) resolveSubject(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
