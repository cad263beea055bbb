package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fleetdesk/internal/professionals/service"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/middleware"
	"fleetdesk/pkg/model"
)

const maxAvatarSize = 8 << 20 // 8 MiB

type ProfessionalHandler struct {
	service    service.ProfessionalService
	readGuard  middleware.Guard
	writeGuard middleware.Guard
	log        *logger.Logger
}

func NewProfessionalHandler(service service.ProfessionalService, readGuard, writeGuard middleware.Guard, log *logger.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{
		service:    service,
		readGuard:  readGuard,
		writeGuard: writeGuard,
		log:        log,
	}
}

func (h *ProfessionalHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var professional model.Professional
	if err := json.NewDecoder(r.Body).Decode(&professional); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &professional); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, professional); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ProfessionalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professional, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, professional); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ProfessionalHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	professionals, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, professionals, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ProfessionalHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var professional model.Professional
	if err := json.NewDecoder(r.Body).Decode(&professional); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &professional); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, professional); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ProfessionalHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// UploadAvatar accepts a multipart form with an "avatar" file part.
func (h *ProfessionalHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid multipart form",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UploadAvatar", "error", writeErr)
		}
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Missing 'avatar' file field",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UploadAvatar", "error", writeErr)
		}
		return
	}
	defer file.Close()

	professional, err := h.service.SetAvatar(r.Context(), ps.ByName("id"), file)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UploadAvatar", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, professional); err != nil {
		h.log.Error("failed to write success response", "handler", "UploadAvatar", "error", err)
	}
}

func (h *ProfessionalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/professionals", h.writeGuard(h.Create))
	router.GET("/api/v1/professionals", h.readGuard(h.GetAll))
	router.GET("/api/v1/professionals/id/:id", h.readGuard(h.GetByID))
	router.PUT("/api/v1/professionals/id/:id", h.writeGuard(h.Update))
	router.DELETE("/api/v1/professionals/id/:id", h.writeGuard(h.Delete))
	router.POST("/api/v1/professionals/id/:id/avatar", h.writeGuard(h.UploadAvatar))
}
