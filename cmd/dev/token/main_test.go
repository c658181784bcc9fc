package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/vagas/api"
)

func TestMint_AcceptedByMiddleware(t *testing.T) {
	tok, err := mint("k", "ops", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var sub string
	h := api.JWTAuthMiddlewareWithSecret("k")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = api.SubjectFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/postings", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK || sub != "ops" {
		t.Fatalf("token rejected: status=%d sub=%q", w.Code, sub)
	}
}

func TestMint_Expired(t *testing.T) {
	tok, err := mint("k", "ops", time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	h := api.JWTAuthMiddlewareWithSecret("k")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected expired token to be rejected, got %d", w.Code)
	}
}
