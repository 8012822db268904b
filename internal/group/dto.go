package group

import "github.com/google/uuid"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name                 string `json:"name" validate:"required,min=1,max=100"`
	Description          string `json:"description"`
	SubscriptionFee      int64  `json:"subscription_fee" validate:"gte=0"`
	SubscriptionPeriodMS int64  `json:"subscription_period_ms" validate:"gte=0"`
	MaxMembers           int64  `json:"max_members" validate:"gte=0"`
	ChatGroupRef         string `json:"chat_group_ref"`
	InviteRef            string `json:"invite_ref"`
}

// UpdateDescriptionRequest represents an admin-gated description change
type UpdateDescriptionRequest struct {
	AdminCapID     uuid.UUID `json:"admin_cap_id" validate:"required"`
	AdminCapSecret string    `json:"admin_cap_secret" validate:"required"`
	Description    string    `json:"description"`
}

// UpdateFeeRequest represents an admin-gated fee change
type UpdateFeeRequest struct {
	AdminCapID      uuid.UUID `json:"admin_cap_id" validate:"required"`
	AdminCapSecret  string    `json:"admin_cap_secret" validate:"required"`
	SubscriptionFee int64     `json:"subscription_fee" validate:"gte=0"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Owner                string    `json:"owner"`
	SubscriptionFee      int64     `json:"subscription_fee"`
	SubscriptionPeriodMS int64     `json:"subscription_period_ms"`
	MaxMembers           int64     `json:"max_members"`
	CurrentMembers       int64     `json:"current_members"`
	ChatGroupRef         string    `json:"chat_group_ref"`
	InviteRef            string    `json:"invite_ref"`
	ReportCount          int64     `json:"report_count"`
	CreatedAt            int64     `json:"created_at"`
}

// AdminCapResponse carries the freshly minted cap. Secret is only ever
// populated at creation time; it cannot be recovered afterwards.
type AdminCapResponse struct {
	ID      uuid.UUID `json:"id"`
	GroupID uuid.UUID `json:"group_id"`
	Secret  string    `json:"secret,omitempty"`
}

// CreateGroupResponse bundles the new group with its admin cap
type CreateGroupResponse struct {
	Group    *GroupResponse    `json:"group"`
	AdminCap *AdminCapResponse `json:"admin_cap"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:                   g.ID,
		Name:                 g.Name,
		Description:          g.Description,
		Owner:                g.Owner,
		SubscriptionFee:      g.SubscriptionFee,
		SubscriptionPeriodMS: g.SubscriptionPeriodMS,
		MaxMembers:           g.MaxMembers,
		CurrentMembers:       g.CurrentMembers,
		ChatGroupRef:         g.ChatGroupRef,
		InviteRef:            g.InviteRef,
		ReportCount:          g.ReportCount,
		CreatedAt:            g.CreatedAt,
	}
}
