// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model for off-chain rows (accounts, farm registrations). Ledger
// entities carry their own integer identity and never use soft deletes.
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ZeroAddress marks synthetic ledger events with no acting wallet.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Role is the on-chain participant role, bound at registration time.
// Customer exists only off-chain and never appears on the ledger.
type Role uint8

const (
	RoleNone Role = iota
	RoleAdmin
	RoleFarm
	RoleCollectionPoint
	RoleWarehouse
	RoleProcessingUnit
	RoleRetailer
)

var roleLabels = map[Role]string{
	RoleAdmin:           "Admin",
	RoleFarm:            "Farm",
	RoleCollectionPoint: "Collection Point",
	RoleWarehouse:       "Warehouse",
	RoleProcessingUnit:  "Processing Unit",
	RoleRetailer:        "Retailer",
}

func (r Role) String() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return "Unregistered"
}

// RoleFromLabel maps the UI vocabulary back to the enum. Unknown labels
// (including "Farmer" and "Customer", which are off-chain) map to RoleNone.
func RoleFromLabel(label string) Role {
	for role, l := range roleLabels {
		if l == label {
			return role
		}
	}
	return RoleNone
}

// ReceivingState returns the product state a shipment enters when this
// role takes delivery. Farms and unregistered actors are never valid
// ship destinations.
func (r Role) ReceivingState() (ProductState, bool) {
	switch r {
	case RoleCollectionPoint:
		return StateAtCollectionPoint, true
	case RoleWarehouse:
		return StateAtWarehouse, true
	case RoleProcessingUnit:
		return StateAtProcessingUnit, true
	case RoleRetailer:
		return StateAtRetailer, true
	}
	return 0, false
}

// ProductState follows the contract's state enum; the integer values are
// part of the external interface and must not be reordered.
type ProductState uint8

const (
	StateAtFarm ProductState = iota
	StateInTransit
	StateAtCollectionPoint
	StateAtWarehouse
	StateAtProcessingUnit
	StateAtRetailer
	StateProcessed
	StateSold
)

var stateLabels = map[ProductState]string{
	StateAtFarm:            "AT_FARM",
	StateInTransit:         "IN_TRANSIT",
	StateAtCollectionPoint: "AT_COLLECTION_POINT",
	StateAtWarehouse:       "AT_WAREHOUSE",
	StateAtProcessingUnit:  "AT_PROCESSING_UNIT",
	StateAtRetailer:        "AT_RETAILER",
	StateProcessed:         "PROCESSED",
	StateSold:              "SOLD",
}

func (s ProductState) String() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}

// Holdable reports whether a product in this state sits with a custodian
// who may ship or consume it. Transit and terminal states are not holdable.
func (s ProductState) Holdable() bool {
	switch s {
	case StateAtFarm, StateAtCollectionPoint, StateAtWarehouse, StateAtProcessingUnit, StateAtRetailer:
		return true
	}
	return false
}

// ApprovalStatus tracks the off-chain farm registration workflow.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusDeclined ApprovalStatus = "declined"
)
