package wallet

// DepositRequest represents a balance top-up. This is a dev faucet:
// real deployments settle deposits through an external payment gateway.
type DepositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// AccountResponse represents the response for a wallet account
type AccountResponse struct {
	Principal string `json:"principal"`
	Balance   int64  `json:"balance"`
	UpdatedAt int64  `json:"updated_at"`
}

// ToResponse converts an Account model to an AccountResponse DTO
func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		Principal: a.Principal,
		Balance:   a.Balance,
		UpdatedAt: a.UpdatedAt,
	}
}
