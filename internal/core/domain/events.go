package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitionOccurred is emitted after a status change has been persisted.
type TransitionOccurred struct {
	RequestID  string          `json:"requestId"`
	Title      string          `json:"title"`
	OwnerID    string          `json:"ownerId"`
	Department string          `json:"department"`
	Amount     decimal.Decimal `json:"amount"`
	FromStatus RequestStatus   `json:"fromStatus"`
	ToStatus   RequestStatus   `json:"toStatus"`
	ActorID    string          `json:"actorId"`
	ActorRole  Role            `json:"actorRole"`
	Comment    string          `json:"comment,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}
