// internal/ledger/transfer.go
package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// SplitAndShip carves quantityToShip off a product and puts it in
// transit to destination as a new child record. Custody of the child
// stays with the shipper until delivery; the source keeps its remaining
// quantity and state. Partial shipping reduces the source, it never
// consumes it.
func (l *Ledger) SplitAndShip(caller string, productID, quantityToShip uint64, destination string) (*models.Product, error) {
	var child *models.Product

	err := l.write(func(tx *gorm.DB) error {
		product, err := getProduct(tx, productID)
		if err != nil {
			return err
		}
		if product.CurrentOwner != NormalizeAddress(caller) {
			return fmt.Errorf("caller %s does not own product #%d: %w", caller, productID, ErrUnauthorized)
		}
		shipper, err := getActor(tx, caller)
		if err != nil {
			return err
		}
		if !product.CurrentState.Holdable() {
			return fmt.Errorf("product #%d is %s and cannot be shipped: %w",
				productID, product.CurrentState, ErrInvalidState)
		}
		if quantityToShip == 0 || quantityToShip > product.Quantity {
			return fmt.Errorf("product #%d has %d %s, requested %d: %w",
				productID, product.Quantity, product.Unit, quantityToShip, ErrInsufficientQuantity)
		}

		receiver, err := getActor(tx, destination)
		if err != nil {
			return err
		}
		if receiver == nil {
			return fmt.Errorf("destination %s is not registered: %w", destination, ErrInvalidDestination)
		}
		if _, ok := receiver.Role.ReceivingState(); !ok {
			return fmt.Errorf("destination role %s cannot receive shipments: %w",
				receiver.Role, ErrInvalidDestination)
		}

		if err := tx.Model(product).
			Update("quantity", product.Quantity-quantityToShip).Error; err != nil {
			return fmt.Errorf("failed to decrement source quantity: %w", err)
		}

		child = &models.Product{
			Name:               product.Name,
			Quantity:           quantityToShip,
			Unit:               product.Unit,
			CurrentOwner:       product.CurrentOwner,
			CurrentState:       models.StateInTransit,
			DestinationAddress: receiver.Address,
			ParentProductID:    product.ProductID,
		}
		if err := tx.Create(child).Error; err != nil {
			return fmt.Errorf("failed to create shipment record: %w", err)
		}

		// Owners registered out of band record RoleNone rather than
		// failing the event append.
		shipperRole := models.RoleNone
		if shipper != nil {
			shipperRole = shipper.Role
		}
		details := fmt.Sprintf("Split from #%d, shipped to %s", product.ProductID, receiver.Address)
		return appendEvent(tx, child.ProductID, caller, shipperRole, details)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"source_id":   productID,
		"shipment_id": child.ProductID,
		"quantity":    child.Quantity,
		"destination": child.DestinationAddress,
	}).Info("Product shipped")
	return child, nil
}

// ReceiveProduct completes a shipment. Only the recorded destination may
// take delivery; ownership transfers here, not at ship time, and the
// state becomes the one matching the receiver's role.
func (l *Ledger) ReceiveProduct(caller string, productID uint64) (*models.Product, error) {
	var received *models.Product

	err := l.write(func(tx *gorm.DB) error {
		product, err := getProduct(tx, productID)
		if err != nil {
			return err
		}
		if product.CurrentState != models.StateInTransit {
			return fmt.Errorf("product #%d is %s, not in transit: %w",
				productID, product.CurrentState, ErrInvalidState)
		}
		if product.DestinationAddress != NormalizeAddress(caller) {
			return fmt.Errorf("product #%d is destined for %s: %w",
				productID, product.DestinationAddress, ErrUnauthorized)
		}

		receiver, err := getActor(tx, caller)
		if err != nil {
			return err
		}
		if receiver == nil {
			return fmt.Errorf("receiver %s is not registered: %w", caller, ErrUnauthorized)
		}
		newState, ok := receiver.Role.ReceivingState()
		if !ok {
			return fmt.Errorf("role %s cannot take delivery: %w", receiver.Role, ErrUnauthorized)
		}

		updates := map[string]interface{}{
			"current_owner":       receiver.Address,
			"current_state":       newState,
			"destination_address": "",
		}
		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record delivery: %w", err)
		}
		product.CurrentOwner = receiver.Address
		product.CurrentState = newState
		product.DestinationAddress = ""
		received = product

		details := fmt.Sprintf("Received by %s", receiver.Role)
		return appendEvent(tx, product.ProductID, receiver.Address, receiver.Role, details)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"product_id": received.ProductID,
		"owner":      received.CurrentOwner,
		"state":      received.CurrentState.String(),
	}).Info("Product received")
	return received, nil
}
