// internal/models/product.go
package models

import "time"

// Product is one ledger record. Records are never deleted: quantity may
// reach zero but the row persists for traceability.
type Product struct {
	ProductID          uint64       `json:"product_id" gorm:"primaryKey;autoIncrement"`
	Name               string       `json:"name" gorm:"size:255;not null"`
	Quantity           uint64       `json:"quantity" gorm:"not null"`
	Unit               string       `json:"unit" gorm:"size:32;not null"`
	CurrentOwner       string       `json:"current_owner" gorm:"size:42;index;not null"`
	CurrentState       ProductState `json:"current_state" gorm:"not null"`
	DestinationAddress string       `json:"destination_address" gorm:"size:42"`
	ParentProductID    uint64       `json:"parent_product_id" gorm:"index;default:0"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`

	History     []ProductEvent      `json:"history,omitempty" gorm:"foreignKey:ProductID;references:ProductID"`
	Ingredients []ProductIngredient `json:"ingredients,omitempty" gorm:"foreignKey:ProductID;references:ProductID"`
}

// Exists distinguishes a real record from the zero-value record returned
// for ids beyond the counter.
func (p *Product) Exists() bool {
	return p.ProductID != 0
}

func (p *Product) StateLabel() string {
	return p.CurrentState.String()
}

// ProductEvent is one entry of a product's append-only history. The actor
// role is snapshotted at event time so later re-registrations cannot
// rewrite provenance.
type ProductEvent struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64    `json:"product_id" gorm:"index;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	Actor     string    `json:"actor" gorm:"size:42;not null"`
	ActorRole Role      `json:"actor_role" gorm:"not null"`
	Details   string    `json:"details" gorm:"type:text;not null"`
}

// ProductIngredient links a recipe output to one consumed input. This is
// the structured upgrade of the contract's string-encoded multi-parent
// lineage; the history detail text keeps the original wording alongside.
type ProductIngredient struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID    uint64 `json:"product_id" gorm:"index;not null"`
	IngredientID uint64 `json:"ingredient_id" gorm:"index;not null"`
	QuantityUsed uint64 `json:"quantity_used" gorm:"not null"`
}
