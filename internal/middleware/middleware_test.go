package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wellspring/internal/auth"
	"wellspring/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowed        []string
		method         string
		origin         string
		expectedOrigin string
		expectedCreds  string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Preflight request",
			allowed:        []string{"https://wellspring.example"},
			method:         http.MethodOptions,
			origin:         "https://wellspring.example",
			expectedOrigin: "https://wellspring.example",
			expectedCreds:  "true",
			expectedStatus: http.StatusNoContent,
			expectHandler:  false,
		},
		{
			name:           "Listed origin",
			allowed:        []string{"https://wellspring.example"},
			method:         http.MethodGet,
			origin:         "https://wellspring.example",
			expectedOrigin: "https://wellspring.example",
			expectedCreds:  "true",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Unlisted origin",
			allowed:        []string{"https://wellspring.example"},
			method:         http.MethodGet,
			origin:         "https://evil.example",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Wildcard",
			allowed:        []string{"*"},
			method:         http.MethodGet,
			origin:         "https://anyone.example",
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := CORS(tt.allowed)(testHandler)

			req := httptest.NewRequest(tt.method, "/api/cart", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Stripe-Signature")
		})
	}
}

func TestLogging(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		path           string
		handlerStatus  int
		expectedStatus int
	}{
		{
			name:           "Successful request",
			method:         http.MethodGet,
			path:           "/api/pages/home",
			handlerStatus:  http.StatusOK,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found request",
			method:         http.MethodGet,
			path:           "/api/unknown",
			handlerStatus:  http.StatusNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Server error",
			method:         http.MethodPost,
			path:           "/api/checkout",
			handlerStatus:  http.StatusInternalServerError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			handler := Logging(logger)(testHandler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		shouldPanic    bool
		panicValue     interface{}
		expectedStatus int
	}{
		{
			name:           "No panic",
			shouldPanic:    false,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Panic with string",
			shouldPanic:    true,
			panicValue:     "something went wrong",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Panic with error",
			shouldPanic:    true,
			panicValue:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Recovery(logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.shouldPanic {
				assert.Contains(t, w.Body.String(), "internal server error")
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.Flush()

	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, w.Flushed)
	assert.Equal(t, w, rw.Unwrap())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", clientIP(req))

	req.RemoteAddr = "[::1]:5123"
	assert.Equal(t, "::1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestCartSession(t *testing.T) {
	logger := zerolog.Nop()
	existing := uuid.NewString()

	tests := []struct {
		name        string
		cookie      string
		expectReuse bool
	}{
		{name: "No cookie issues session"},
		{name: "Valid cookie is reused", cookie: existing, expectReuse: true},
		{name: "Malformed cookie is replaced", cookie: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = SessionFromContext(r.Context())
			})

			handler := CartSession("ws_cart", true, 24*time.Hour, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "ws_cart", Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			_, err := uuid.Parse(seen)
			require.NoError(t, err)
			if tt.expectReuse {
				assert.Equal(t, existing, seen)
			} else {
				assert.NotEqual(t, tt.cookie, seen)
			}

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "ws_cart", cookies[0].Name)
			assert.Equal(t, seen, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
			assert.True(t, cookies[0].Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
			assert.Equal(t, 86400, cookies[0].MaxAge)
		})
	}
}

func issueTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, userID, "guest@wellspring.example", "authenticated", time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	logger := zerolog.Nop()
	verifier := auth.NewJWTVerifier(testSecret, "authenticated", "")
	userID := uuid.New()

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Valid token",
			header:         "Bearer " + issueTestToken(t, userID),
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Missing token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			header:         "Basic " + issueTestToken(t, userID),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage token",
			header:         "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				p, ok := PrincipalFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, userID, p.UserID)
				w.WriteHeader(http.StatusOK)
			})

			handler := Authenticate(verifier, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if !tt.expectHandler {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	logger := zerolog.Nop()
	verifier := auth.NewJWTVerifier(testSecret, "authenticated", "")
	userID := uuid.New()

	tests := []struct {
		name            string
		header          string
		expectedStatus  int
		expectPrincipal bool
	}{
		{name: "Anonymous", expectedStatus: http.StatusOK},
		{name: "Valid token", header: "Bearer " + issueTestToken(t, userID), expectedStatus: http.StatusOK, expectPrincipal: true},
		{name: "Invalid token", header: "Bearer broken", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasPrincipal := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, hasPrincipal = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := OptionalAuth(verifier, logger)(testHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectPrincipal, hasPrincipal)
		})
	}
}

type stubAdminChecker struct {
	admin bool
	err   error
}

func (s stubAdminChecker) IsAdmin(context.Context, uuid.UUID) (bool, error) {
	return s.admin, s.err
}

func TestRequireAdmin(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		checker        stubAdminChecker
		withPrincipal  bool
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Admin", checker: stubAdminChecker{admin: true}, withPrincipal: true, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Non-admin", checker: stubAdminChecker{}, withPrincipal: true, expectedStatus: http.StatusForbidden},
		{name: "Lookup failure", checker: stubAdminChecker{err: assert.AnError}, withPrincipal: true, expectedStatus: http.StatusInternalServerError},
		{name: "No principal", checker: stubAdminChecker{admin: true}, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RequireAdmin(tt.checker, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/pages", nil)
			if tt.withPrincipal {
				req = req.WithContext(WithPrincipal(req.Context(), &model.Principal{UserID: uuid.New()}))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
		})
	}
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(client, 2, time.Minute, zerolog.Nop())(testHandler)

	send := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := send("/api/cart", "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send("/api/cart", "10.0.0.1").Code)

	limited := send("/api/cart", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "RATE_LIMITED")

	// Other clients and health checks are unaffected.
	assert.Equal(t, http.StatusOK, send("/api/cart", "10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, send("/health", "10.0.0.1").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	handler := RateLimit(client, 1, time.Minute, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_InvalidSettingsDisableLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{name: "zero window", limit: 10, window: 0},
		{name: "negative window", limit: 10, window: -time.Minute},
		{name: "sub-second window", limit: 10, window: time.Millisecond},
		{name: "zero limit", limit: 0, window: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RateLimit(client, tt.limit, tt.window, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				require.NotPanics(t, func() {
					handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
				})
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
			}
			assert.Empty(t, mr.Keys())
		})
	}
}
