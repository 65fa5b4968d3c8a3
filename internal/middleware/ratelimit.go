package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"collabboard/internal/apperr"
	"collabboard/internal/auth"
	"collabboard/internal/logging"
)

// ClientIP: the peer address without port. Forwarding headers are ignored
// since any client can set them.
func ClientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return strings.Trim(ip, "[]")
}

// clientKey: the authenticated uid when there is one, else the client IP
func clientKey(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return "uid:" + id.UID
	}
	return "ip:" + ClientIP(r)
}

// RateLimit: rejects requests with 429 once a client exceeds its budget
func RateLimit(limiter *ClientLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.Allow(key) {
				logging.FromContext(r.Context(), logger).Warn("rate limit exceeded", zap.String("client", key))
				apperr.Write(w, apperr.NewRateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBody: caps the request body. Handlers see *http.MaxBytesError from
// reads past the cap; see BodyError.
func MaxBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max > 0 {
				if r.ContentLength > max {
					apperr.Write(w, apperr.NewPayloadTooLarge(max))
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyError: classifies a body read/decode error as 413 or 400
func BodyError(err error) *apperr.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.NewPayloadTooLarge(tooLarge.Limit)
	}
	return apperr.NewInvalidRequest("invalid JSON body")
}
