package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lexora/internal/common/security"
	"lexora/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

var testKey = []byte("middleware-test-secret")

type mockDenylist struct {
	IsRevokedFn func(ctx context.Context, tokenID string) (bool, error)
}

func (m *mockDenylist) Revoke(context.Context, string, time.Time) error { return nil }

func (m *mockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return m.IsRevokedFn(ctx, tokenID)
}

func newTestRouter(deny security.Denylist, policies ...security.Policy) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader))
	r.Use(Authenticator(deny))
	for _, p := range policies {
		r.Use(RequirePolicy(p))
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		jti, exp, _ := TokenFromContext(r.Context())
		if jti == "" || exp.IsZero() {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		json.NewEncoder(w).Encode(id)
	})
	return r
}

func token(t *testing.T, id security.Identity, ttl time.Duration) string {
	t.Helper()
	security.Configure(testKey, ttl)
	defer security.Configure(testKey, time.Hour)
	tok, err := security.GenerateToken(id)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestAuthenticator(t *testing.T) {
	security.Configure(testKey, time.Hour)
	alice := security.Identity{ID: "u1", Role: model.RoleUser, Username: "alice"}

	security.Configure([]byte("some-other-key"), time.Hour)
	foreign, _ := security.GenerateToken(alice)
	security.Configure(testKey, time.Hour)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing header", "", http.StatusUnauthorized, msgNoToken},
		{"not bearer", "Basic abc", http.StatusUnauthorized, msgNoToken},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, msgInvalidToken},
		{"expired", "Bearer " + token(t, alice, -time.Minute), http.StatusUnauthorized, msgInvalidToken},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized, msgInvalidToken},
		{"valid", "Bearer " + token(t, alice, time.Hour), http.StatusOK, ""},
	}
	router := newTestRouter(security.NewMemoryDenylist())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if got := errorBody(t, rec); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				return
			}
			var got security.Identity
			json.Unmarshal(rec.Body.Bytes(), &got)
			if got != alice {
				t.Errorf("identity = %+v, want %+v", got, alice)
			}
		})
	}
}

func TestAuthenticatorDenylist(t *testing.T) {
	security.Configure(testKey, time.Hour)
	tok := token(t, security.Identity{ID: "u1", Role: model.RoleUser, Username: "alice"}, time.Hour)

	tests := []struct {
		name     string
		fn       func(context.Context, string) (bool, error)
		wantCode int
	}{
		{"not revoked", func(context.Context, string) (bool, error) { return false, nil }, http.StatusOK},
		{"revoked", func(context.Context, string) (bool, error) { return true, nil }, http.StatusUnauthorized},
		{"lookup fails", func(context.Context, string) (bool, error) { return false, errors.New("redis down") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			newTestRouter(&mockDenylist{IsRevokedFn: tt.fn}).ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequirePolicyAdminOnly(t *testing.T) {
	security.Configure(testKey, time.Hour)
	tests := []struct {
		role     string
		wantCode int
	}{
		{model.RoleUser, http.StatusForbidden},
		{model.RoleAdmin, http.StatusOK},
	}
	router := newTestRouter(nil, security.AdminOnly)
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, security.Identity{ID: "u1", Role: tt.role, Username: "x"}, time.Hour))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.wantCode {
			t.Errorf("%s: status = %d, want %d", tt.role, rec.Code, tt.wantCode)
		}
		if tt.wantCode == http.StatusForbidden && errorBody(t, rec) != "Admin access required" {
			t.Errorf("%s: body = %s", tt.role, rec.Body.String())
		}
	}
}

func TestIdentityFromEmptyContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("identity found in empty context")
	}
	ctx := WithIdentity(context.Background(), security.Identity{ID: "u1"})
	if id, ok := IdentityFromContext(ctx); !ok || id.ID != "u1" {
		t.Fatalf("id = %+v, ok = %v", id, ok)
	}
}
