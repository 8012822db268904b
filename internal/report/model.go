package report

import "github.com/google/uuid"

// Report is the metadata published under a group: a world-readable title
// and summary, the pointer to the encrypted payload in external storage,
// and the key identifier of the material that decrypts it. Reports are
// immutable once published.
//
// KeyID is opaque to this service except for one property checked at
// access time: its leading bytes must equal the owning group's namespace.
// Nothing validates that at publish time; a wrong key id makes every
// future access check fail instead of failing fast here.
type Report struct {
	ID             uuid.UUID `json:"id"`
	GroupID        uuid.UUID `json:"group_id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	PayloadPointer string    `json:"payload_pointer"`
	KeyID          []byte    `json:"key_id"`
	Publisher      string    `json:"publisher"`
	PublishedAt    int64     `json:"published_at"`
}
