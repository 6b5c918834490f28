// internal/ledger/product.go
package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// CreateProduct records a harvest. Only a registered Farm actor may
// create root products; the record starts AT_FARM with no parent.
func (l *Ledger) CreateProduct(caller, name string, quantity uint64, unit string) (*models.Product, error) {
	var product *models.Product

	err := l.write(func(tx *gorm.DB) error {
		actor, err := getActor(tx, caller)
		if err != nil {
			return err
		}
		if actor == nil || actor.Role != models.RoleFarm {
			return fmt.Errorf("caller %s does not hold the Farm role: %w", caller, ErrUnauthorized)
		}
		if quantity == 0 {
			return fmt.Errorf("harvest quantity must be positive: %w", ErrInsufficientQuantity)
		}

		product = &models.Product{
			Name:         name,
			Quantity:     quantity,
			Unit:         unit,
			CurrentOwner: actor.Address,
			CurrentState: models.StateAtFarm,
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return appendEvent(tx, product.ProductID, actor.Address, actor.Role, "Harvested")
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"product_id": product.ProductID,
		"name":       product.Name,
		"quantity":   product.Quantity,
		"unit":       product.Unit,
		"owner":      product.CurrentOwner,
	}).Info("Product created")
	return product, nil
}
