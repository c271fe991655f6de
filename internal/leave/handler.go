package leave

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateLeave(userID int64, dto CreateLeaveDTO) (*LeaveRequest, error)
	GetLeaveByID(id int64, caller *auth.SessionUser) (*LeaveRequest, error)
	GetUserLeaves(userID int64, limit, offset int) ([]*LeaveRequest, error)
	GetLeavesByStatus(status Status, caller *auth.SessionUser, limit, offset int) ([]*LeaveRequest, error)
	ApplyAction(id int64, dto ActionDTO, caller *auth.SessionUser) (*LeaveRequest, error)
	EditLeave(id, userID int64, dto UpdateLeaveDTO) (*LeaveRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateLeave: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateLeave: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lr, err := h.Service.CreateLeave(user.ID, dto)
	if err != nil {
		h.Logger.Error("CreateLeave: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateLeave: leave request created",
		"leave_id", lr.ID,
		"user_id", user.ID,
		"leave_type", lr.LeaveType)

	h.WriteJSON(w, http.StatusCreated, lr)
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leaveID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave request ID")
		return
	}

	lr, err := h.Service.GetLeaveByID(id, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lr)
}

func (h *Handler) GetUserLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	leaves, err := h.Service.GetUserLeaves(user.ID, limit, offset)
	if err != nil {
		h.Logger.Error("GetUserLeaves: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get leave requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leaves": leaves,
		"limit":  limit,
		"offset": offset,
	})
}

// GetLeavesByStatus lists one status bucket for approvers.
func (h *Handler) GetLeavesByStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := Status(chi.URLParam(r, "status"))
	limit, offset := pagination(r)

	leaves, err := h.Service.GetLeavesByStatus(status, user, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leaves": leaves,
		"status": status,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leaveID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave request ID")
		return
	}

	var dto ActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ApplyAction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lr, err := h.Service.ApplyAction(id, dto, user)
	if err != nil {
		h.Logger.Error("ApplyAction: service error",
			"error", err, "leave_id", id, "action", dto.Action, "approver_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApplyAction: leave request transitioned",
		"leave_id", lr.ID, "status", lr.Status, "approver_id", user.ID)

	h.WriteJSON(w, http.StatusOK, lr)
}

func (h *Handler) EditLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leaveID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave request ID")
		return
	}

	var dto UpdateLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("EditLeave: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lr, err := h.Service.EditLeave(id, user.ID, dto)
	if err != nil {
		h.Logger.Error("EditLeave: service error", "error", err, "leave_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lr)
}

// GetLeaveTypes lists the closed vocabulary; public so the filing form
// can render it before login.
func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"leave_types": Types()})
}

func (h *Handler) leaveID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
