package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/assets/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Minute)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, []string{"MEMBER"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	var gotUser uuid.UUID
	handler := Auth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookie, Value: token}) }, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotUser = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK && gotUser != userID {
				t.Fatalf("expected user %s got %s", userID, gotUser)
			}
		})
	}
}

func TestGetUserIDWithoutSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := GetUserID(req.Context()); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	ctx := WithSession(req.Context(), "nao-uuid", nil)
	if _, err := GetUserID(ctx); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles("asset_manage")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithSession(req.Context(), uuid.NewString(), []string{"MEMBER"})))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithSession(req.Context(), uuid.NewString(), []string{"Asset_Manage"})))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestInternalKey(t *testing.T) {
	if InternalKey("")(okHandler) == nil {
		t.Fatal("expected passthrough handler")
	}

	hash, err := auth.HashKey("segredo-interno-do-servico-fusion")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler := InternalKey(hash)(okHandler)

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "outra-chave-com-tamanho-suficiente", http.StatusUnauthorized},
		{"short", "curta", http.StatusUnauthorized},
		{"right", "segredo-interno-do-servico-fusion", http.StatusOK},
		{"right cached", "segredo-interno-do-servico-fusion", http.StatusOK},
		{"wrong after cache", "outra-chave-com-tamanho-suficiente", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.key != "" {
			req.Header.Set(InternalKeyHeader, tc.key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.status, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(InternalKeyHeader, "segredo-interno-do-servico-fusion")
	InternalKey("nao-e-um-hash")(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for malformed hash, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://painel.example.com", "*.example.org"})(okHandler)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://painel.example.com", true},
		{"https://app.example.org", true},
		{"https://example.org", false},
		{"https://evil.com", false},
		{"", false},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if tc.allowed && got != tc.origin {
			t.Fatalf("%q: expected allow, got %q", tc.origin, got)
		}
		if !tc.allowed && got != "" {
			t.Fatalf("%q: expected deny, got %q", tc.origin, got)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestIPRateLimit(t *testing.T) {
	handler := IPRateLimit(NewRateLimiter(0.001, 1))(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request: expected 200 got %d", code)
	}
	if code := send("10.0.0.1:9999"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429 got %d", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other ip: expected 200 got %d", code)
	}
}

func TestUserRateLimitSkipsAnonymous(t *testing.T) {
	handler := UserRateLimit(NewRateLimiter(0.001, 1))(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("anonymous request %d: expected 200 got %d", i, rec.Code)
		}
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
