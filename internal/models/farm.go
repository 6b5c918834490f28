// internal/models/farm.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FarmRegistration is one submission of the farm approval workflow.
// Approval is what puts the farm's wallet on the ledger with the Farm
// role; until then the wallet cannot create products.
type FarmRegistration struct {
	BaseModel
	FarmName      string         `json:"farm_name" gorm:"size:255;not null"`
	OwnerName     string         `json:"owner_name" gorm:"size:255;not null"`
	Email         string         `json:"email" gorm:"size:255;not null"`
	Phone         string         `json:"phone" gorm:"size:50;not null"`
	WalletAddress string         `json:"wallet_address" gorm:"size:42;index;not null"`
	Coordinates   string         `json:"coordinates" gorm:"size:255"`
	Certificates  pq.StringArray `json:"certificates" gorm:"type:text[]"`
	Status        ApprovalStatus `json:"status" gorm:"size:20;default:'pending';index"`
	ReviewedBy    *uuid.UUID     `json:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt    *time.Time     `json:"reviewed_at"`
	ReviewNote    string         `json:"review_note" gorm:"type:text"`
}
