package user

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
	GetProfile(userID int64) (*User, error)
	Subordinates(caller *auth.SessionUser, search string) ([]*Subordinate, error)
	UpdateBalances(caller *auth.SessionUser, targetID int64, dto UpdateBalancesDTO) (*User, error)
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

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.Service.GetProfile(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewProfileDTO(profile))
}

// GetSubordinates lists visible users; the search query filters by
// name fragment after the role/department scoping.
func (h *Handler) GetSubordinates(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	search := r.URL.Query().Get("search")

	subs, err := h.Service.Subordinates(user, search)
	if err != nil {
		h.Logger.Error("GetSubordinates: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"subordinates": subs})
}

// UpdateBalances is the admin override route for ledger counters.
func (h *Handler) UpdateBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdateBalancesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateBalances: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateBalances(user, targetID, dto)
	if err != nil {
		h.Logger.Error("UpdateBalances: service error", "error", err, "target_id", targetID, "admin_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UpdateBalances: ledger overridden", "target_id", targetID, "admin_id", user.ID)
	h.WriteJSON(w, http.StatusOK, updated)
}
