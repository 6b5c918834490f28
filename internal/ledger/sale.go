// internal/ledger/sale.go
package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// SellProduct records a retail sale against the product's own history.
// The quantity is decremented in place and the record transitions to
// SOLD once fully drained; sold batches are not split into new records.
func (l *Ledger) SellProduct(caller string, productID, quantity uint64) (*models.Product, error) {
	var sold *models.Product

	err := l.write(func(tx *gorm.DB) error {
		retailer, err := getActor(tx, caller)
		if err != nil {
			return err
		}
		if retailer == nil || retailer.Role != models.RoleRetailer {
			return fmt.Errorf("caller %s does not hold the Retailer role: %w", caller, ErrUnauthorized)
		}

		product, err := getProduct(tx, productID)
		if err != nil {
			return err
		}
		if product.CurrentOwner != retailer.Address {
			return fmt.Errorf("product #%d is not owned by %s: %w", productID, caller, ErrUnauthorized)
		}
		if product.CurrentState != models.StateAtRetailer {
			return fmt.Errorf("product #%d is %s, not at a retailer: %w",
				productID, product.CurrentState, ErrInvalidState)
		}
		if quantity == 0 || quantity > product.Quantity {
			return fmt.Errorf("product #%d has %d %s, requested %d: %w",
				productID, product.Quantity, product.Unit, quantity, ErrInsufficientQuantity)
		}

		remaining := product.Quantity - quantity
		updates := map[string]interface{}{"quantity": remaining}
		if remaining == 0 {
			updates["current_state"] = models.StateSold
		}
		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		product.Quantity = remaining
		if remaining == 0 {
			product.CurrentState = models.StateSold
		}
		sold = product

		details := fmt.Sprintf("Sold %d %s", quantity, product.Unit)
		return appendEvent(tx, product.ProductID, retailer.Address, retailer.Role, details)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"product_id": sold.ProductID,
		"sold":       quantity,
		"remaining":  sold.Quantity,
		"state":      sold.CurrentState.String(),
	}).Info("Product sold")
	return sold, nil
}
