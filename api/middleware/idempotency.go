package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tradeforge/tradedocs-backend/api/responses"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// Idempotency claims the Idempotency-Key header on mutating requests. A
// repeated key for the same caller, route and body is rejected so retried
// document creations and movement postings cannot double-post. Requests
// without the header pass through.
func Idempotency(store idempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutatingMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := hashRequest(r.Method, r.URL.Path, UserIDFromContext(ctx), key, body)
			storeKey := store.IdempotencyKey("request", fingerprint)

			claimed, err := store.SetNX(ctx, storeKey, 1, idempotencyTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check"))
				return
			}
			if !claimed {
				if logg != nil {
					logCtx := logg.WithField(ctx, "idempotency_key", key)
					logg.Warn(logCtx, "idempotency.duplicate")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeConflict, "duplicate request"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hashRequest(method, path, userID, key string, body []byte) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%s", method, path, userID, key, body))
	return hex.EncodeToString(sum[:])
}
