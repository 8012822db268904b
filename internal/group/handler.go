package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clownfish2023/web3fans/pkg/middleware"
	"github.com/clownfish2023/web3fans/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}/description", h.UpdateDescription)
	r.Put("/{id}/fee", h.UpdateFee)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group and mint the admin cap bound to it; the cap secret is returned once
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=CreateGroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "Group name is required")
		return
	}

	g, ac, secret, err := h.service.Create(r.Context(), owner, &req, time.Now().UnixMilli())
	if err != nil {
		if errors.Is(err, ErrNegativeFee) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, &CreateGroupResponse{
		Group: g.ToResponse(),
		AdminCap: &AdminCapResponse{
			ID:      ac.ID,
			GroupID: ac.GroupID,
			Secret:  secret,
		},
	})
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get public group metadata
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	g, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// UpdateDescription handles PUT /groups/{id}/description
// @Summary      Update group description
// @Description  Change the description; requires the group's admin cap
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body UpdateDescriptionRequest true "Description update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/description [put]
func (h *Handler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.UpdateDescription(r.Context(), id, &req)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// UpdateFee handles PUT /groups/{id}/fee
// @Summary      Update subscription fee
// @Description  Change the subscription fee; requires the group's admin cap
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body UpdateFeeRequest true "Fee update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/fee [put]
func (h *Handler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.UpdateFee(r.Context(), id, &req)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) writeUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrCapNotFound), errors.Is(err, ErrNotAuthorized):
		response.Forbidden(w, ErrNotAuthorized.Error())
	case errors.Is(err, ErrNegativeFee):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to update group")
	}
}
