package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clownfish2023/web3fans/pkg/middleware"
	"github.com/clownfish2023/web3fans/pkg/response"
)

// Handler handles HTTP requests for wallet operations
type Handler struct {
	service *Service
}

// NewHandler creates a new wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for wallet endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/deposit", h.Deposit)
	r.Get("/{principal}", h.GetByPrincipal)

	return r
}

// Deposit handles POST /wallets/deposit
// @Summary      Deposit funds
// @Description  Credit the caller's wallet balance (dev faucet)
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request body DepositRequest true "Deposit request"
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /wallets/deposit [post]
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	account, err := h.service.Deposit(r.Context(), principal, req.Amount, time.Now().UnixMilli())
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to deposit")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}

// GetByPrincipal handles GET /wallets/{principal}
// @Summary      Get wallet balance
// @Description  Get a wallet account by principal
// @Tags         wallets
// @Produce      json
// @Param        principal path string true "Principal"
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /wallets/{principal} [get]
func (h *Handler) GetByPrincipal(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")

	account, err := h.service.GetByPrincipal(r.Context(), principal)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get account")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}
