package wallet

// Account holds a principal's balance in the smallest currency unit.
// Principals are opaque identities; the service only compares them for
// equality.
type Account struct {
	Principal string `json:"principal"`
	Balance   int64  `json:"balance"`
	UpdatedAt int64  `json:"updated_at"`
}
