package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeCounterStore struct {
	counts map[string]int64
}

func (s *fakeCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestWriteRateLimitBlocksAfterLimit(t *testing.T) {
	store := &fakeCounterStore{}
	policy := NewWriteRateLimitPolicy("write", time.Minute, 2)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), "caller-1"))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "caller-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestWriteRateLimitIgnoresReads(t *testing.T) {
	store := &fakeCounterStore{}
	policy := NewWriteRateLimitPolicy("write", time.Minute, 1)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), "caller-1"))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("read %d: expected 200 got %d", i+1, resp.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("reads must not touch the counter, got %v", store.counts)
	}
}

func TestWriteRateLimitSeparatesCallers(t *testing.T) {
	store := &fakeCounterStore{}
	policy := NewWriteRateLimitPolicy("write", time.Minute, 1)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, caller := range []string{"caller-1", "caller-2"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), caller))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("caller %s: expected 200 got %d", caller, resp.Code)
		}
	}
}

func TestWriteRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewWriteRateLimitPolicy("write", 0, 0)
	handler := WriteRateLimit(policy, &fakeCounterStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
