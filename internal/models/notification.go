// internal/models/notification.go
package models

import "github.com/google/uuid"

// Notification informs a session owner about activity on their catalog.
// Created as a best-effort side effect; its lifecycle is independent of
// the license that triggered it.
type Notification struct {
	BaseModel
	UserID  uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type    NotificationType `json:"type" gorm:"type:varchar(20);not null;index"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message" gorm:"type:text"`
	Link    string           `json:"link" gorm:"size:512"`
	Read    bool             `json:"read" gorm:"default:false;index"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
