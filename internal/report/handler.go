package report

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/pkg/middleware"
	"github.com/clownfish2023/web3fans/pkg/response"
)

// Handler handles HTTP requests for report operations
type Handler struct {
	service *Service
}

// NewHandler creates a new report handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for report endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Publish)
	r.Get("/", h.ListByGroup)
	r.Get("/{id}", h.GetByID)

	return r
}

// Publish handles POST /reports
// @Summary      Publish a report
// @Description  Publish encrypted report content under a group; requires the group's admin cap
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body PublishReportRequest true "Publish request"
// @Success      201 {object} response.APIResponse{data=ReportResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /reports [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	publisher, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req PublishReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == uuid.Nil || req.Title == "" {
		response.BadRequest(w, "group_id and title are required")
		return
	}

	keyID, err := hex.DecodeString(req.KeyID)
	if err != nil || len(keyID) == 0 {
		response.BadRequest(w, "key_id must be non-empty hex")
		return
	}
	keyMaterial, err := base64.StdEncoding.DecodeString(req.KeyMaterial)
	if err != nil || len(keyMaterial) == 0 {
		response.BadRequest(w, "key_material must be non-empty base64")
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil || len(payload) == 0 {
		response.BadRequest(w, "payload must be non-empty base64")
		return
	}

	rep, err := h.service.Publish(r.Context(), publisher, &req, keyID, keyMaterial, payload, time.Now().UnixMilli())
	if err != nil {
		switch {
		case errors.Is(err, group.ErrNotAuthorized), errors.Is(err, group.ErrCapNotFound):
			response.Forbidden(w, group.ErrNotAuthorized.Error())
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to publish report")
		}
		return
	}

	response.JSON(w, http.StatusCreated, rep.ToResponse())
}

// GetByID handles GET /reports/{id}
// @Summary      Get report by ID
// @Description  Get public report metadata (title, summary, payload pointer, key id)
// @Tags         reports
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} response.APIResponse{data=ReportResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /reports/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	rep, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get report")
		return
	}

	response.JSON(w, http.StatusOK, rep.ToResponse())
}

// ListByGroup handles GET /reports?group_id=...
// @Summary      List reports for a group
// @Description  List public metadata of all reports published under a group
// @Tags         reports
// @Produce      json
// @Param        group_id query string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]ReportResponse}
// @Router       /reports [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(r.URL.Query().Get("group_id"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing group_id")
		return
	}

	reports, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list reports")
		return
	}

	responses := make([]*ReportResponse, len(reports))
	for i, rep := range reports {
		responses[i] = rep.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}
