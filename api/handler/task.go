package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/api/transport"
	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/stats"
	"github.com/fastygo/workdesk/pkg/httpcontext"
	taskUC "github.com/fastygo/workdesk/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc  *taskUC.UseCase
	loc *time.Location
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		loc:         loc,
	}
}

// @Summary List tasks
// @Description Filters: status, priority (comma separated), assigned, creator, category, overdue, range/from/to.
// @Description Paging: limit (default 50, at most 200) and offset.
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID, role, ok := h.caller(ctx)
	if !ok {
		return
	}

	window, err := parseDateFilter(ctx, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	q := stats.Query{
		AssignedUserID: query(ctx, "assigned"),
		CreatorUserID:  query(ctx, "creator"),
		CategoryID:     query(ctx, "category"),
		Window:         window,
		OverdueOnly:    query(ctx, "overdue") == "true",
	}
	for _, s := range queryList(ctx, "status") {
		status := domain.TaskStatus(s)
		if !status.Valid() {
			h.respondInvalid(ctx, "unknown status "+s)
			return
		}
		q.Statuses = append(q.Statuses, status)
	}
	for _, p := range queryList(ctx, "priority") {
		priority := domain.Priority(p)
		if !priority.Valid() {
			h.respondInvalid(ctx, "unknown priority "+p)
			return
		}
		q.Priorities = append(q.Priorities, priority)
	}
	if !isManager(role) && q.AssignedUserID != userID && q.CreatorUserID != userID {
		if q.AssignedUserID != "" || q.CreatorUserID != "" {
			h.respondError(ctx, domain.ErrForbidden)
			return
		}
		q.AssignedUserID = userID
	}

	p := page(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, q, p)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(tasks, len(tasks), window, p.Limit, p.Offset))
}

// @Summary Get task with its comment history
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, pathID(ctx), actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID, _, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	task := &domain.Task{}
	if err := h.applyRequest(task, req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Description Status cannot be changed here; use the transition endpoint.
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, pathID(ctx), actor, func(task *domain.Task) error {
		return h.applyRequest(task, req)
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id, actor); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Move a task to another status
// @Description A non-empty comment is required and stored as an audit entry.
// @Tags tasks
// @Router /api/v1/tasks/{id}/transition [post]
func (h *TaskHandler) TransitionTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.TransitionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	action := domain.TaskAction(strings.ToLower(strings.TrimSpace(req.Action)))
	task, err := h.uc.TransitionTask(stdCtx, pathID(ctx), action, req.Comment, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Actions available from the task's current status
// @Tags tasks
// @Router /api/v1/tasks/{id}/actions [get]
func (h *TaskHandler) GetActions(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, actions, err := h.uc.AllowedActions(stdCtx, pathID(ctx), actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TaskActionsView{
		TaskID:  task.ID,
		Status:  task.Status,
		Actions: actions,
	})
}

func (h *TaskHandler) applyRequest(task *domain.Task, req transport.TaskRequest) error {
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = domain.Priority(*req.Priority)
	}
	if req.RepeatType != nil {
		task.RepeatType = domain.RepeatType(*req.RepeatType)
	}
	if req.AssignedUserID != nil {
		task.AssignedUserID = *req.AssignedUserID
	}
	if req.CategoryID != nil {
		task.CategoryID = *req.CategoryID
	}
	if req.DueDate != nil {
		due, err := parseDue(*req.DueDate, h.loc)
		if err != nil {
			return err
		}
		task.DueDate = due
	}
	return nil
}
