// internal/models/user.go
package models

import (
	"strings"

	"gorm.io/gorm"
)

type User struct {
	BaseModel
	WalletAddress string `json:"wallet_address" gorm:"uniqueIndex;size:42;not null"`
	DisplayName   string `json:"display_name" gorm:"size:100"`
	Email         string `json:"email,omitempty" gorm:"size:255"`
	Bio           string `json:"bio,omitempty" gorm:"type:text"`
	AvatarURL     string `json:"avatar_url,omitempty" gorm:"size:512"`
	ProfileData   JSONB  `json:"profile_data" gorm:"type:jsonb"`

	// Relationships
	Sessions      []Session      `json:"sessions,omitempty" gorm:"foreignKey:OwnerID"`
	Licenses      []License      `json:"licenses,omitempty" gorm:"foreignKey:BuyerID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
}

// Wallet addresses are the chain-level identity; stored lowercase so
// recipient matching stays case-insensitive.
func (u *User) NormalizeWallet() {
	u.WalletAddress = strings.ToLower(u.WalletAddress)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.NormalizeWallet()
	return nil
}
