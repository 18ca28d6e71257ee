package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/api/transport"
	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/pkg/httpcontext"
	authUC "github.com/fastygo/workdesk/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc         *authUC.UseCase
	secret     []byte
	issuer     string
	defaultTTL time.Duration
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, secret, issuer string, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		secret:      []byte(secret),
		issuer:      issuer,
		defaultTTL:  ttl,
	}
}

// @Summary Issue a new session and bearer token
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.AuthLoginRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.UserID == "" {
		h.respondInvalid(ctx, "user_id is required")
		return
	}

	ttl := h.ttlFromRequest(req.TTL)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.CreateSession(stdCtx, req.UserID, ttl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondToken(ctx, session, http.StatusCreated)
}

// @Summary Refresh an existing session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	var req transport.RefreshRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.SessionID == "" {
		h.respondInvalid(ctx, "session_id is required")
		return
	}

	ttl := h.ttlFromRequest(req.TTL)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.RefreshSession(stdCtx, req.SessionID, ttl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondToken(ctx, session, http.StatusOK)
}

// @Summary End a session owned by the caller
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	userID, _, ok := h.caller(ctx)
	if !ok {
		return
	}
	var req transport.RefreshRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.SessionID == "" {
		h.respondInvalid(ctx, "session_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RevokeSession(stdCtx, req.SessionID, userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *AuthHandler) respondToken(ctx *fasthttp.RequestCtx, session *domain.Session, status int) {
	token, err := SignToken(h.secret, h.issuer, session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, transport.LoginResponse{Session: session, Token: token})
}

// SignToken issues an HS256 token carrying the claims the auth middleware reads.
// An empty issuer omits the iss claim.
func SignToken(secret []byte, issuer string, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": session.UserID,
		"role":    session.Role,
		"sid":     session.ID,
		"iat":     session.CreatedAt.Unix(),
		"exp":     session.ExpiresAt.Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (h *AuthHandler) ttlFromRequest(ttlSeconds int) time.Duration {
	if ttlSeconds <= 0 {
		return h.defaultTTL
	}
	return time.Duration(ttlSeconds) * time.Second
}
