// internal/ledger/processing.go
package ledger

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// ProcessProduct transforms part of a source product into a new one.
// The declared output quantity is independent of the quantity consumed:
// processing changes physical form (drying, milling, juicing), so yield
// and loss are modeled explicitly rather than conserved 1:1.
func (l *Ledger) ProcessProduct(caller string, sourceID, quantityToProcess uint64, newName string, newQuantity uint64, newUnit string) (*models.Product, error) {
	var output *models.Product

	err := l.write(func(tx *gorm.DB) error {
		processor, err := requireProcessor(tx, caller)
		if err != nil {
			return err
		}

		source, err := getProduct(tx, sourceID)
		if err != nil {
			return err
		}
		if err := consumeIngredient(tx, source, processor.Address, quantityToProcess); err != nil {
			return err
		}
		if newQuantity == 0 {
			return fmt.Errorf("output quantity must be positive: %w", ErrInsufficientQuantity)
		}

		output = &models.Product{
			Name:            newName,
			Quantity:        newQuantity,
			Unit:            newUnit,
			CurrentOwner:    processor.Address,
			CurrentState:    models.StateAtProcessingUnit,
			ParentProductID: source.ProductID,
		}
		if err := tx.Create(output).Error; err != nil {
			return fmt.Errorf("failed to create processed product: %w", err)
		}

		details := fmt.Sprintf("Processed from #%d", source.ProductID)
		return appendEvent(tx, output.ProductID, processor.Address, processor.Role, details)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"source_id": sourceID,
		"output_id": output.ProductID,
		"consumed":  quantityToProcess,
		"yield":     output.Quantity,
	}).Info("Product processed")
	return output, nil
}

// ProcessWithRecipe merges multiple ingredients into one output product.
// The multi-parent lineage is stored as structured ingredient links, and
// the history detail keeps the contract's original text convention
// ("Created from processing ingredients: #a, #b") so existing indexers
// that parse it keep working.
func (l *Ledger) ProcessWithRecipe(caller string, ingredientIDs, quantitiesToUse []uint64, outputName string, outputQuantity uint64, outputUnit string) (*models.Product, error) {
	var output *models.Product

	err := l.write(func(tx *gorm.DB) error {
		if len(ingredientIDs) == 0 || len(ingredientIDs) != len(quantitiesToUse) {
			return fmt.Errorf("recipe needs matching ingredient and quantity lists: %w", ErrInsufficientQuantity)
		}
		if outputQuantity == 0 {
			return fmt.Errorf("output quantity must be positive: %w", ErrInsufficientQuantity)
		}

		processor, err := requireProcessor(tx, caller)
		if err != nil {
			return err
		}

		ingredients := make([]*models.Product, len(ingredientIDs))
		for i, id := range ingredientIDs {
			ingredient, err := getProduct(tx, id)
			if err != nil {
				return err
			}
			if err := consumeIngredient(tx, ingredient, processor.Address, quantitiesToUse[i]); err != nil {
				return err
			}
			ingredients[i] = ingredient
		}

		output = &models.Product{
			Name:         outputName,
			Quantity:     outputQuantity,
			Unit:         outputUnit,
			CurrentOwner: processor.Address,
			CurrentState: models.StateAtProcessingUnit,
		}
		if err := tx.Create(output).Error; err != nil {
			return fmt.Errorf("failed to create recipe output: %w", err)
		}

		refs := make([]string, len(ingredients))
		for i, ingredient := range ingredients {
			refs[i] = fmt.Sprintf("#%d", ingredient.ProductID)
			link := &models.ProductIngredient{
				ProductID:    output.ProductID,
				IngredientID: ingredient.ProductID,
				QuantityUsed: quantitiesToUse[i],
			}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("failed to link ingredient: %w", err)
			}
		}

		details := "Created from processing ingredients: " + strings.Join(refs, ", ")
		return appendEvent(tx, output.ProductID, processor.Address, processor.Role, details)
	})
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"output_id":   output.ProductID,
		"ingredients": ingredientIDs,
		"yield":       output.Quantity,
	}).Info("Recipe processed")
	return output, nil
}

func requireProcessor(tx *gorm.DB, caller string) (*models.Actor, error) {
	actor, err := getActor(tx, caller)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role != models.RoleProcessingUnit {
		return nil, fmt.Errorf("caller %s does not hold the Processing Unit role: %w", caller, ErrUnauthorized)
	}
	return actor, nil
}

// consumeIngredient checks ownership, state and quantity for one input
// of a processing step, then decrements it. An input drained to zero
// transitions to PROCESSED, the terminal consumed state; the record
// itself persists for traceability.
func consumeIngredient(tx *gorm.DB, product *models.Product, owner string, quantity uint64) error {
	if product.CurrentOwner != owner {
		return fmt.Errorf("product #%d is not owned by %s: %w", product.ProductID, owner, ErrUnauthorized)
	}
	if product.CurrentState != models.StateAtProcessingUnit {
		return fmt.Errorf("product #%d is %s, not at a processing unit: %w",
			product.ProductID, product.CurrentState, ErrInvalidState)
	}
	if quantity == 0 || quantity > product.Quantity {
		return fmt.Errorf("product #%d has %d %s, requested %d: %w",
			product.ProductID, product.Quantity, product.Unit, quantity, ErrInsufficientQuantity)
	}

	remaining := product.Quantity - quantity
	updates := map[string]interface{}{"quantity": remaining}
	if remaining == 0 {
		updates["current_state"] = models.StateProcessed
	}
	if err := tx.Model(product).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to consume ingredient: %w", err)
	}
	product.Quantity = remaining
	if remaining == 0 {
		product.CurrentState = models.StateProcessed
	}
	return nil
}
