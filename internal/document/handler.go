package document

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Upload accepts one multipart file under the "document" field and
// returns the stored path reference for use in a leave request.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(h.Service.maxBytes); err != nil {
		h.Logger.Error("Upload: failed to parse multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing document file")
		return
	}
	defer file.Close()

	path, err := h.Service.Save(header.Filename, header.Size, file)
	if err != nil {
		h.Logger.Error("Upload: failed to store document", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Upload: document stored", "user_id", user.ID, "path", path)
	h.WriteJSON(w, http.StatusCreated, map[string]string{"document_path": path})
}

// Download streams a previously stored document.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	name := chi.URLParam(r, "name")
	fullPath, err := h.Service.Resolve("/uploads/" + name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.ServeFile(w, r, fullPath)
}
