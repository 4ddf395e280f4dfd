// internal/models/session.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Session is a priced, licensable studio recording. PriceUSD is fixed at
// creation; payment verification always recomputes the expected split from
// the stored price, never from a client-supplied one.
type Session struct {
	BaseModel
	OwnerID      uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title        string          `json:"title" gorm:"size:255;not null"`
	Description  string          `json:"description" gorm:"type:text"`
	Genres       pq.StringArray  `json:"genres" gorm:"type:text[]"`
	PriceUSD     decimal.Decimal `json:"price_usd" gorm:"type:decimal(10,2);not null"`
	AudioURL     string          `json:"audio_url" gorm:"size:512"`
	CoverURL     string          `json:"cover_url" gorm:"size:512"`
	Status       SessionStatus   `json:"status" gorm:"type:varchar(20);default:'published';index"`
	StoryAssetID *string         `json:"story_asset_id,omitempty" gorm:"size:128"`
	StoryTxHash  *string         `json:"story_tx_hash,omitempty" gorm:"size:66"`

	// Relationships
	Owner    User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Licenses []License `json:"licenses,omitempty" gorm:"foreignKey:SessionID"`
}
