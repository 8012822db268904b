package access

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"
)

// OpenReportRequest represents the access-key proof mode request
type OpenReportRequest struct {
	AccessKeyID     uuid.UUID `json:"access_key_id" validate:"required"`
	AccessKeySecret string    `json:"access_key_secret" validate:"required"`
	ReportID        uuid.UUID `json:"report_id" validate:"required"`
}

// SealApproveRequest represents the subscription proof mode request.
// KeyID is hex.
type SealApproveRequest struct {
	KeyID          string    `json:"key_id" validate:"required"`
	SubscriptionID uuid.UUID `json:"subscription_id" validate:"required"`
	GroupID        uuid.UUID `json:"group_id" validate:"required"`
}

// ReportGrantResponse is returned on a successful access request
type ReportGrantResponse struct {
	ReportID       uuid.UUID `json:"report_id"`
	KeyID          string    `json:"key_id"`
	PayloadPointer string    `json:"payload_pointer"`
	KeyMaterial    string    `json:"key_material"`
	VerifiedAt     int64     `json:"verified_at"`
}

// ToResponse converts a ReportGrant to its DTO; the key id is hex and
// the key material base64
func (g *ReportGrant) ToResponse() *ReportGrantResponse {
	return &ReportGrantResponse{
		ReportID:       g.ReportID,
		KeyID:          hex.EncodeToString(g.KeyID),
		PayloadPointer: g.PayloadPointer,
		KeyMaterial:    base64.StdEncoding.EncodeToString(g.KeyMaterial),
		VerifiedAt:     g.VerifiedAt,
	}
}
