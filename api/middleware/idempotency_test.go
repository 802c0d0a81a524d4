package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	seen map[string]bool
}

func (s *fakeIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("td:idempotency:%s:%s", scope, id)
}

func TestIdempotencyRejectsRepeatedKey(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"type":"order"}`))
		req.Header.Set("Idempotency-Key", "abc-123")
		req = req.WithContext(WithUserID(req.Context(), "caller-1"))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send(); code != http.StatusCreated {
		t.Fatalf("first request: expected 201 got %d", code)
	}
	if code := send(); code != http.StatusConflict {
		t.Fatalf("replayed request: expected 409 got %d", code)
	}
}

func TestIdempotencyDistinctKeysPass(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for _, key := range []string{"key-1", "key-2"} {
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", key)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("key %s: expected 201 got %d", key, resp.Code)
		}
	}
}

func TestIdempotencySkipsRequestsWithoutHeader(t *testing.T) {
	store := &fakeIdempotencyStore{}
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201 got %d", i+1, resp.Code)
		}
	}
	if len(store.seen) != 0 {
		t.Fatalf("missing header must bypass the store, got %v", store.seen)
	}
}
