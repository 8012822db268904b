package access

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/internal/keyvault"
	"github.com/clownfish2023/web3fans/internal/report"
	"github.com/clownfish2023/web3fans/internal/subscription"
	"github.com/clownfish2023/web3fans/pkg/middleware"
	"github.com/clownfish2023/web3fans/pkg/response"
)

// Handler handles HTTP requests for access verification
type Handler struct {
	service *Service
}

// NewHandler creates a new access handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for access endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/open", h.OpenReport)
	r.Post("/seal-approve", h.SealApprove)

	return r
}

// OpenReport handles POST /access/open
// @Summary      Request report access with an access key
// @Description  Verify the access key against a report and release the key material and payload pointer
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        request body OpenReportRequest true "Open request"
// @Success      200 {object} response.APIResponse{data=ReportGrantResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Router       /access/open [post]
func (h *Handler) OpenReport(w http.ResponseWriter, r *http.Request) {
	var req OpenReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.AccessKeyID == uuid.Nil || req.ReportID == uuid.Nil {
		response.BadRequest(w, "access_key_id and report_id are required")
		return
	}

	grant, err := h.service.OpenReport(r.Context(), req.AccessKeyID, req.AccessKeySecret, req.ReportID, time.Now().UnixMilli())
	if err != nil {
		h.writeAccessError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, grant.ToResponse())
}

// SealApprove handles POST /access/seal-approve
// @Summary      Approve key release for a subscription
// @Description  Legacy proof mode: verify a subscription against a key id without minting a capability
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        request body SealApproveRequest true "Seal approve request"
// @Success      204 "approved"
// @Failure      403 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Router       /access/seal-approve [post]
func (h *Handler) SealApprove(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req SealApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	keyID, err := hex.DecodeString(req.KeyID)
	if err != nil || len(keyID) == 0 {
		response.BadRequest(w, "key_id must be non-empty hex")
		return
	}
	if req.SubscriptionID == uuid.Nil || req.GroupID == uuid.Nil {
		response.BadRequest(w, "subscription_id and group_id are required")
		return
	}

	if err := h.service.ApproveSeal(r.Context(), keyID, req.SubscriptionID, req.GroupID, principal, time.Now().UnixMilli()); err != nil {
		h.writeAccessError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSubscriptionExpired):
		response.Gone(w, err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidKeyNamespace):
		response.Forbidden(w, err.Error())
	case errors.Is(err, subscription.ErrAccessKeyNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, keyvault.ErrKeyNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, "Failed to verify access")
	}
}
