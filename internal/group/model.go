package group

import "github.com/google/uuid"

// Group represents a paid-subscription group in the system
type Group struct {
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

// AdminCap is the capability token granting administrative rights over
// exactly one group. The bearer secret is returned once at creation and
// only its digest is stored; any admin-only mutation must present a cap
// whose GroupID equals the target group's ID.
type AdminCap struct {
	ID         uuid.UUID `json:"id"`
	GroupID    uuid.UUID `json:"group_id"`
	SecretHash string    `json:"-"`
	CreatedAt  int64     `json:"created_at"`
}
