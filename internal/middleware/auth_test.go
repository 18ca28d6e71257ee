package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/workdesk/api/handler"
	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/pkg/httpcontext"
)

const (
	testSecret = "test-secret"
	testIssuer = "workdesk"
)

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type seen struct {
	called bool
	userID string
	role   string
}

func run(token string, spoof bool) (*fasthttp.RequestCtx, *seen) {
	var s seen
	handler := JWTAuth(testSecret, testIssuer, nil)(func(ctx *fasthttp.RequestCtx) {
		s.called = true
		s.userID = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))
		s.role = string(ctx.Request.Header.Peek(httpcontext.HeaderUserRole))
	})

	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if spoof {
		ctx.Request.Header.Set(httpcontext.HeaderUserID, "intruder")
		ctx.Request.Header.Set(httpcontext.HeaderUserRole, "admin")
	}
	handler(ctx)
	return ctx, &s
}

func TestJWTAuthForwardsClaims(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "u1",
		"role":    "manager",
		"iss":     testIssuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	ctx, s := run(token, true)
	if !s.called {
		t.Fatalf("expected next handler to run, status %d", ctx.Response.StatusCode())
	}
	if s.userID != "u1" || s.role != "manager" {
		t.Fatalf("unexpected identity %q/%q", s.userID, s.role)
	}
}

func TestJWTAuthAcceptsIssuedTokens(t *testing.T) {
	now := time.Now()
	token, err := handler.SignToken([]byte(testSecret), testIssuer, &domain.Session{
		ID:        "s1",
		UserID:    "u2",
		Role:      domain.RoleEmployee,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, s := run(token, false)
	if !s.called || s.userID != "u2" || s.role != domain.RoleEmployee {
		t.Fatalf("unexpected result %+v", s)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	valid := jwt.MapClaims{"user_id": "u1", "iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token"},
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, []byte("other"), valid)},
		{name: "foreign issuer", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"user_id": "u1",
			"iss":     "someone-else",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"user_id": "u1",
			"iss":     testIssuer,
			"exp":     time.Now().Add(-time.Minute).Unix(),
		})},
		{name: "no subject", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"iss": testIssuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{name: "unsigned", token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, s := run(tt.token, true)
			if s.called {
				t.Fatalf("next handler must not run")
			}
			if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", ctx.Response.StatusCode())
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "raw-token")
	if got := extractToken(ctx); got != "raw-token" {
		t.Fatalf("expected raw token, got %q", got)
	}
	ctx.Request.Header.Set("Authorization", "Bearer abc")
	if got := extractToken(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
