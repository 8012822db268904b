package subscription

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

// Handler handles HTTP requests for subscription operations
type Handler struct {
	service *Service
}

// NewHandler creates a new subscription handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for subscription endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Subscribe)
	r.Get("/{id}", h.GetByID)

	return r
}

// Subscribe handles POST /subscriptions
// @Summary      Subscribe to a group
// @Description  Pay the exact group fee and mint a time-bounded subscription, optionally with a namespaced access key
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body SubscribeRequest true "Subscribe request"
// @Success      201 {object} response.APIResponse{data=SubscribeResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      402 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /subscriptions [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	subscriber, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == uuid.Nil {
		response.BadRequest(w, "group_id is required")
		return
	}

	now := time.Now().UnixMilli()

	sub, key, secret, err := h.service.Subscribe(r.Context(), subscriber, &req, now)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidFee):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrGroupFull):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrInsufficientFunds):
			response.PaymentRequired(w, err.Error())
		default:
			response.InternalError(w, "Failed to subscribe")
		}
		return
	}

	resp := &SubscribeResponse{Subscription: sub.ToResponse(now)}
	if key != nil {
		keyResp := key.ToResponse()
		keyResp.Secret = secret
		resp.AccessKey = keyResp
	}

	response.JSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /subscriptions/{id}
// @Summary      Get subscription by ID
// @Description  Get a subscription with its derived active state
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200 {object} response.APIResponse{data=SubscriptionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /subscriptions/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid subscription ID")
		return
	}

	sub, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get subscription")
		return
	}

	response.JSON(w, http.StatusOK, sub.ToResponse(time.Now().UnixMilli()))
}
