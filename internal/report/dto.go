package report

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// PublishReportRequest represents the request to publish a report under
// a group. KeyID is hex; KeyMaterial and Payload are base64 (the payload
// is expected to already be encrypted under the key material).
type PublishReportRequest struct {
	GroupID        uuid.UUID `json:"group_id" validate:"required"`
	AdminCapID     uuid.UUID `json:"admin_cap_id" validate:"required"`
	AdminCapSecret string    `json:"admin_cap_secret" validate:"required"`
	Title          string    `json:"title" validate:"required,min=1,max=200"`
	Summary        string    `json:"summary"`
	KeyID          string    `json:"key_id" validate:"required"`
	KeyMaterial    string    `json:"key_material" validate:"required"`
	Payload        string    `json:"payload" validate:"required"`
}

// ReportResponse represents the response for a report
type ReportResponse struct {
	ID             uuid.UUID `json:"id"`
	GroupID        uuid.UUID `json:"group_id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	PayloadPointer string    `json:"payload_pointer"`
	KeyID          string    `json:"key_id"`
	Publisher      string    `json:"publisher"`
	PublishedAt    int64     `json:"published_at"`
}

// ToResponse converts a Report model to a ReportResponse DTO
func (rep *Report) ToResponse() *ReportResponse {
	return &ReportResponse{
		ID:             rep.ID,
		GroupID:        rep.GroupID,
		Title:          rep.Title,
		Summary:        rep.Summary,
		PayloadPointer: rep.PayloadPointer,
		KeyID:          hex.EncodeToString(rep.KeyID),
		Publisher:      rep.Publisher,
		PublishedAt:    rep.PublishedAt,
	}
}
