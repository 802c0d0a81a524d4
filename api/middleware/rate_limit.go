package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tradeforge/tradedocs-backend/api/responses"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// WriteRateLimitPolicy throttles mutating requests per caller.
type WriteRateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

// NewWriteRateLimitPolicy builds a policy with the supplied window and limit.
func NewWriteRateLimitPolicy(name string, window time.Duration, limit int) WriteRateLimitPolicy {
	return WriteRateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p WriteRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p WriteRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "write"
	}
	return p.name
}

func (p WriteRateLimitPolicy) key(caller string) string {
	if caller == "" {
		return ""
	}
	return fmt.Sprintf("rl:%s:%s", p.normalizedName(), caller)
}

var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// WriteRateLimit enforces a per-caller counter on mutating requests. Reads
// pass through untouched. The caller key is the authenticated user when
// present, the client IP otherwise.
func WriteRateLimit(policy WriteRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutatingMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			caller := UserIDFromContext(ctx)
			if caller == "" {
				caller = clientIP(r)
			}

			key := policy.key(caller)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.IncrWithTTL(ctx, key, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(policy.limit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":         policy.normalizedName(),
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
