package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fleetdesk/internal/users/service"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/middleware"
	"fleetdesk/pkg/model"
)

type UserHandler struct {
	service    service.UserService
	adminGuard middleware.Guard
	log        *logger.Logger
}

// NewUserHandler wires the identity endpoints. Register and Login are
// public; everything else requires the admin guard.
func NewUserHandler(service service.UserService, adminGuard middleware.Guard, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service:    service,
		adminGuard: adminGuard,
		log:        log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Register", "error", writeErr)
		}
		return
	}

	created, err := h.service.Register(r.Context(), &user)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Login", "error", writeErr)
		}
		return
	}

	tokens, err := h.service.Login(r.Context(), &creds)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, tokens); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	users, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ChangeRole", "error", writeErr)
		}
		return
	}

	if err := h.service.ChangeRole(r.Context(), ps.ByName("id"), body.Role); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ChangeRole", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/register", h.Register)
	router.POST("/api/v1/users/login", h.Login)
	router.GET("/api/v1/users", h.adminGuard(h.GetAll))
	router.GET("/api/v1/users/id/:id", h.adminGuard(h.GetByID))
	router.PATCH("/api/v1/users/id/:id/role", h.adminGuard(h.ChangeRole))
	router.DELETE("/api/v1/users/id/:id", h.adminGuard(h.Delete))
}
