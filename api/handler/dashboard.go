package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/pkg/httpcontext"
	dashboardUC "github.com/fastygo/workdesk/usecase/dashboard"
)

type DashboardHandler struct {
	baseHandler
	uc  *dashboardUC.UseCase
	loc *time.Location
}

func NewDashboardHandler(uc *dashboardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		loc:         loc,
	}
}

// @Summary Task statistics for the selected window
// @Description Employees always see their own tasks; managers may pass user or omit it for everyone.
// @Tags dashboard
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(ctx *fasthttp.RequestCtx) {
	userID, role, ok := h.caller(ctx)
	if !ok {
		return
	}
	filter, err := parseDateFilter(ctx, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	subject := userID
	if isManager(role) {
		subject = query(ctx, "user")
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	overview, err := h.uc.Overview(stdCtx, filter, subject)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, overview)
}

// @Summary Per-user statistics
// @Tags dashboard
// @Router /api/v1/dashboard/users [get]
func (h *DashboardHandler) Users(ctx *fasthttp.RequestCtx) {
	if !h.requireManager(ctx) {
		return
	}
	filter, err := parseDateFilter(ctx, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rows, err := h.uc.ByUser(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rows)
}

// @Summary Per-category statistics
// @Tags dashboard
// @Router /api/v1/dashboard/categories [get]
func (h *DashboardHandler) Categories(ctx *fasthttp.RequestCtx) {
	if !h.requireManager(ctx) {
		return
	}
	filter, err := parseDateFilter(ctx, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rows, err := h.uc.ByCategory(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rows)
}

func (h *DashboardHandler) requireManager(ctx *fasthttp.RequestCtx) bool {
	_, role, ok := h.caller(ctx)
	if !ok {
		return false
	}
	if !isManager(role) {
		h.respondJSON(ctx, http.StatusForbidden, forbiddenEnvelope())
		return false
	}
	return true
}
