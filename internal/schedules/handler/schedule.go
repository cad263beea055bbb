package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fleetdesk/internal/schedules/service"
	httputil "fleetdesk/pkg/http"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/middleware"
	"fleetdesk/pkg/model"
)

type ScheduleHandler struct {
	service    service.ScheduleService
	readGuard  middleware.Guard
	writeGuard middleware.Guard
	log        *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, readGuard, writeGuard middleware.Guard, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service:    service,
		readGuard:  readGuard,
		writeGuard: writeGuard,
		log:        log,
	}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	schedule, err := h.service.Create(r.Context(), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, schedule); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ScheduleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	schedule, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ScheduleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	schedules, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, schedules, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input model.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	schedule, err := h.service.Update(r.Context(), ps.ByName("id"), &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deleted, err := h.service.Delete(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, deleted); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

// Export streams the schedules in the requested date range as CSV, one
// row per booking ordered by professional then date.
func (h *ScheduleHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	schedules, err := h.service.Export(r.Context(), query.Get("fromDate"), query.Get("toDate"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Export", "error", writeErr)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schedules.csv"`)

	cw := csv.NewWriter(w)
	header := []string{"Professional", "Driver", "Client", "Date", "Day", "Start", "End", "Destination", "Service", "Status"}
	if err := cw.Write(header); err != nil {
		h.log.Error("failed to write CSV header", "handler", "Export", "error", err)
		return
	}

	for _, s := range schedules {
		row := []string{
			s.Professional,
			s.Driver,
			s.ClientName,
			s.Date.Format("2006-01-02"),
			s.Day,
			s.StartTime,
			s.EndTime,
			s.Destination,
			s.Service,
			s.Status,
		}
		if err := cw.Write(row); err != nil {
			h.log.Error("failed to write CSV row", "handler", "Export", "schedule_id", s.ID, "error", err)
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Error("failed to flush CSV export", "handler", "Export", "error", err)
	}

	h.log.Info("Schedules exported", "rows", len(schedules))
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/schedules", h.writeGuard(h.Create))
	router.GET("/api/v1/schedules", h.readGuard(h.GetAll))
	router.GET("/api/v1/schedules/export", h.writeGuard(h.Export))
	router.GET("/api/v1/schedules/id/:id", h.readGuard(h.GetByID))
	router.PUT("/api/v1/schedules/id/:id", h.writeGuard(h.Update))
	router.DELETE("/api/v1/schedules/id/:id", h.writeGuard(h.Delete))
}
