// internal/models/license.go
package models

import "github.com/google/uuid"

// License is the proof-of-purchase record linking a buyer to a session.
// The composite unique index on (session_id, buyer_id) is what makes
// issuance idempotent; application-level checks alone cannot prevent a
// race between concurrent confirm requests.
type License struct {
	BaseModel
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:idx_licenses_session_buyer"`
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_licenses_session_buyer"`
	TxHash    *string   `json:"tx_hash,omitempty" gorm:"size:66;index"`

	// Relationships
	Session Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}
