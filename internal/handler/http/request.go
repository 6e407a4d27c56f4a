package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// RequestService is the part of the development API the request handler needs.
type RequestService interface {
	CreateLeave(ctx context.Context, req request.CreateLeaveRequest) (request.LeaveRequest, error)
	ListLeave(ctx context.Context, filter request.ListFilter) ([]request.LeaveRequest, error)
	UpdateLeaveStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.LeaveRequest, error)
	DeleteLeave(ctx context.Context, id string) error

	CreateTimeModification(ctx context.Context, req request.CreateTimeModificationRequest) (request.TimeModificationRequest, error)
	ListTimeModification(ctx context.Context, filter request.ListFilter) ([]request.TimeModificationRequest, error)
	UpdateTimeModificationStatus(ctx context.Context, id string, req request.UpdateStatusRequest) (request.TimeModificationRequest, error)
	DeleteTimeModification(ctx context.Context, id string) error
}

type RequestHandler interface {
	CreateLeave(w http.ResponseWriter, r *http.Request)
	ListLeave(w http.ResponseWriter, r *http.Request)
	UpdateLeaveStatus(w http.ResponseWriter, r *http.Request)
	DeleteLeave(w http.ResponseWriter, r *http.Request)

	CreateTimeModification(w http.ResponseWriter, r *http.Request)
	ListTimeModification(w http.ResponseWriter, r *http.Request)
	UpdateTimeModificationStatus(w http.ResponseWriter, r *http.Request)
	DeleteTimeModification(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	requestService RequestService
}

func NewRequestHandler(requestService RequestService) RequestHandler {
	return &requestHandlerImpl{
		requestService: requestService,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func listFilter(r *http.Request) (request.ListFilter, error) {
	status, err := request.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		return request.ListFilter{}, err
	}
	return request.ListFilter{Status: status}, nil
}

// ========================================
// LEAVE REQUESTS
// ========================================

// CreateLeave implements RequestHandler.
func (h *requestHandlerImpl) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLeaveRequest
	if !decodeBody(w, r, "CreateLeave", &req) {
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.requestService.CreateLeave(r.Context(), req)
	if err != nil {
		slog.Error("CreateLeave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// ListLeave implements RequestHandler.
func (h *requestHandlerImpl) ListLeave(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items, err := h.requestService.ListLeave(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, items)
}

// UpdateLeaveStatus implements RequestHandler.
func (h *requestHandlerImpl) UpdateLeaveStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatusRequest
	if !decodeBody(w, r, "UpdateLeaveStatus", &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.requestService.UpdateLeaveStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+string(result.Status), result)
}

// DeleteLeave implements RequestHandler.
func (h *requestHandlerImpl) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.requestService.DeleteLeave(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request withdrawn", nil)
}

// ========================================
// TIME MODIFICATION REQUESTS
// ========================================

// CreateTimeModification implements RequestHandler.
func (h *requestHandlerImpl) CreateTimeModification(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTimeModificationRequest
	if !decodeBody(w, r, "CreateTimeModification", &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.requestService.CreateTimeModification(r.Context(), req)
	if err != nil {
		slog.Error("CreateTimeModification service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time modification request submitted", result)
}

// ListTimeModification implements RequestHandler.
func (h *requestHandlerImpl) ListTimeModification(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items, err := h.requestService.ListTimeModification(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, items)
}

// UpdateTimeModificationStatus implements RequestHandler.
func (h *requestHandlerImpl) UpdateTimeModificationStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatusRequest
	if !decodeBody(w, r, "UpdateTimeModificationStatus", &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.requestService.UpdateTimeModificationStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time modification request "+string(result.Status), result)
}

// DeleteTimeModification implements RequestHandler.
func (h *requestHandlerImpl) DeleteTimeModification(w http.ResponseWriter, r *http.Request) {
	if err := h.requestService.DeleteTimeModification(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time modification request withdrawn", nil)
}
