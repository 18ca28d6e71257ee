package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/api/transport"
	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/pkg/httpcontext"
	appLogger "github.com/fastygo/workdesk/pkg/logger"
	"github.com/fastygo/workdesk/usecase"
)

// Headers set by the JWT middleware.
const (
	HeaderUserID   = httpcontext.HeaderUserID
	HeaderUserRole = httpcontext.HeaderUserRole
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.String("path", string(ctx.Path())), zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		ctx.SetBodyString(`{"status":"error","code":"INTERNAL","error":"internal error"}`)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	var meta interface{}
	var exceeds *domain.ExceedsBalanceError
	if errors.As(err, &exceeds) {
		meta = map[string]interface{}{"excess": exceeds.Excess}
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.String("request_id", string(ctx.Response.Header.Peek(httpcontext.HeaderRequestID))),
			zap.Error(err))
		h.respondJSON(ctx, status, transport.NewError(code, "internal error", nil))
		return
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), meta))
}

// requestLogger returns the handler logger tagged with the request id carried by stdCtx.
func (h baseHandler) requestLogger(stdCtx context.Context) *zap.Logger {
	return appLogger.WithRequestID(stdCtx, h.logger)
}

// caller returns the authenticated user id and role, answering 401 when the id is missing.
func (h baseHandler) caller(ctx *fasthttp.RequestCtx) (string, string, bool) {
	userID := string(ctx.Request.Header.Peek(HeaderUserID))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
		return "", "", false
	}
	return userID, string(ctx.Request.Header.Peek(HeaderUserRole)), true
}

// actor is caller packed as a domain.Actor.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	userID, role, ok := h.caller(ctx)
	return domain.Actor{UserID: userID, Role: role}, ok
}

// page reads limit and offset from the query string.
func page(ctx *fasthttp.RequestCtx) usecase.Page {
	return usecase.NewPage(parseInt(query(ctx, "limit"), 0), parseInt(query(ctx, "offset"), 0))
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dest interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dest); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return false
	}
	return true
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func isManager(role string) bool {
	return role == domain.RoleManager || role == domain.RoleAdmin
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func query(ctx *fasthttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

// queryList splits a comma separated query parameter.
func queryList(ctx *fasthttp.RequestCtx, key string) []string {
	raw := query(ctx, key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

// parseDateFilter reads range, from and to from the query string.
func parseDateFilter(ctx *fasthttp.RequestCtx, loc *time.Location) (domain.DateFilter, error) {
	return domain.ParseDateFilter(query(ctx, "range"), query(ctx, "from"), query(ctx, "to"), loc)
}

// parseDay reads a YYYY-MM-DD calendar day in loc.
func parseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, domain.WrapError(domain.ErrCodeInvalid, "invalid date "+value, err)
	}
	return day, nil
}

// parseDue accepts RFC3339, or a bare date meaning the last second of that day in loc.
func parseDue(value string, loc *time.Location) (time.Time, error) {
	if due, err := time.Parse(time.RFC3339, value); err == nil {
		return due.In(loc), nil
	}
	day, err := parseDay(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Second), nil
}

func forbiddenEnvelope() transport.Envelope {
	return transport.NewError(string(domain.ErrCodeForbidden), domain.ErrForbidden.Error(), nil)
}
