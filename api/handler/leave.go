package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/api/transport"
	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/transition"
	"github.com/fastygo/workdesk/pkg/httpcontext"
	leaveUC "github.com/fastygo/workdesk/usecase/leave"
)

type LeaveHandler struct {
	baseHandler
	uc  *leaveUC.UseCase
	loc *time.Location
}

func NewLeaveHandler(uc *leaveUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, loc *time.Location) *LeaveHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		loc:         loc,
	}
}

// @Summary List leave requests whose first day is in the window
// @Description Managers may pass user, or user=* for every employee.
// @Description Paging: limit (default 50, at most 200) and offset.
// @Tags leaves
// @Router /api/v1/leaves [get]
func (h *LeaveHandler) List(ctx *fasthttp.RequestCtx) {
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
		switch requested := query(ctx, "user"); requested {
		case "":
		case "*":
			subject = ""
		default:
			subject = requested
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	p := page(ctx)
	leaves, err := h.uc.List(stdCtx, subject, filter, p)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(transport.NewLeaveViews(leaves), len(leaves), filter, p.Limit, p.Offset))
}

// @Summary Compute days and remaining balance without applying
// @Tags leaves
// @Router /api/v1/leaves/preview [post]
func (h *LeaveHandler) Preview(ctx *fasthttp.RequestCtx) {
	in, ok := h.applyInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	preview, err := h.uc.Preview(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, preview)
}

// @Summary Apply for leave
// @Tags leaves
// @Router /api/v1/leaves [post]
func (h *LeaveHandler) Apply(ctx *fasthttp.RequestCtx) {
	in, ok := h.applyInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leave, err := h.uc.Apply(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewLeaveView(leave))
}

// @Summary Approve or reject leave days
// @Tags leaves
// @Router /api/v1/leaves/{id}/decision [post]
func (h *LeaveHandler) Decide(ctx *fasthttp.RequestCtx) {
	userID, _, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req transport.LeaveDecisionRequest
	if !h.decode(ctx, &req) {
		return
	}
	in := leaveUC.DecideInput{
		LeaveID:   pathID(ctx),
		DeciderID: userID,
		All:       transition.Decision(strings.ToLower(strings.TrimSpace(req.All))),
		Remarks:   req.Remarks,
	}
	if len(req.Decisions) > 0 {
		in.Decisions = make(map[string]transition.Decision, len(req.Decisions))
		for date, d := range req.Decisions {
			in.Decisions[date] = transition.Decision(strings.ToLower(strings.TrimSpace(d)))
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leave, err := h.uc.Decide(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.requestLogger(stdCtx).Debug("leave decision applied", zap.String("leave_id", leave.ID))
	h.respondSuccess(ctx, http.StatusOK, transport.NewLeaveView(leave))
}

// @Summary Delete a leave request, restoring approved days
// @Tags leaves
// @Router /api/v1/leaves/{id} [delete]
func (h *LeaveHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, _, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, pathID(ctx), userID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Leave balances of the caller (or of user, for managers)
// @Tags leaves
// @Router /api/v1/leaves/balances [get]
func (h *LeaveHandler) Balances(ctx *fasthttp.RequestCtx) {
	userID, role, ok := h.caller(ctx)
	if !ok {
		return
	}
	if requested := query(ctx, "user"); requested != "" && isManager(role) {
		userID = requested
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	balances, err := h.uc.Balances(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, balances)
}

// @Summary Configured leave types and their allowed units
// @Tags leaves
// @Router /api/v1/leaves/types [get]
func (h *LeaveHandler) Types(ctx *fasthttp.RequestCtx) {
	if _, _, ok := h.caller(ctx); !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	types, err := h.uc.LeaveTypes(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, types)
}

func (h *LeaveHandler) applyInput(ctx *fasthttp.RequestCtx) (leaveUC.ApplyInput, bool) {
	userID, _, ok := h.caller(ctx)
	if !ok {
		return leaveUC.ApplyInput{}, false
	}

	var req transport.LeaveApplyRequest
	if !h.decode(ctx, &req) {
		return leaveUC.ApplyInput{}, false
	}

	from, err := parseDay(req.From, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return leaveUC.ApplyInput{}, false
	}
	to, err := parseDay(req.To, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return leaveUC.ApplyInput{}, false
	}

	in := leaveUC.ApplyInput{
		UserID:      userID,
		LeaveTypeID: req.LeaveTypeID,
		From:        from,
		To:          to,
		Reason:      strings.TrimSpace(req.Reason),
	}
	if len(req.Units) > 0 {
		in.Overrides = make(map[string]domain.DayUnit, len(req.Units))
		for date, unit := range req.Units {
			in.Overrides[date] = domain.DayUnit(unit)
		}
	}
	return in, true
}
