package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fleetdesk/internal/drivers/service"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/middleware"
	"fleetdesk/pkg/model"
)

const maxPhotoSize = 8 << 20 // 8 MiB

type DriverHandler struct {
	service    service.DriverService
	readGuard  middleware.Guard
	writeGuard middleware.Guard
	log        *logger.Logger
}

func NewDriverHandler(service service.DriverService, readGuard, writeGuard middleware.Guard, log *logger.Logger) *DriverHandler {
	return &DriverHandler{
		service:    service,
		readGuard:  readGuard,
		writeGuard: writeGuard,
		log:        log,
	}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var driver model.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &driver); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, driver); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	driver, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *DriverHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	drivers, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, drivers, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var driver model.Driver
	if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &driver); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// UploadPhoto accepts a multipart form with a "photo" file part and
// attaches the stored URL to the driver.
func (h *DriverHandler) UploadPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid multipart form",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UploadPhoto", "error", writeErr)
		}
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Missing 'photo' file field",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UploadPhoto", "error", writeErr)
		}
		return
	}
	defer file.Close()

	driver, err := h.service.AddPhoto(r.Context(), ps.ByName("id"), file)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UploadPhoto", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, driver); err != nil {
		h.log.Error("failed to write success response", "handler", "UploadPhoto", "error", err)
	}
}

func (h *DriverHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/drivers", h.writeGuard(h.Create))
	router.GET("/api/v1/drivers", h.readGuard(h.GetAll))
	router.GET("/api/v1/drivers/id/:id", h.readGuard(h.GetByID))
	router.PUT("/api/v1/drivers/id/:id", h.writeGuard(h.Update))
	router.DELETE("/api/v1/drivers/id/:id", h.writeGuard(h.Delete))
	router.POST("/api/v1/drivers/id/:id/photos", h.writeGuard(h.UploadPhoto))
}
