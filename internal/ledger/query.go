// internal/ledger/query.go
package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// TraceResult is the full provenance view behind the public traceability
// page: the merged timeline along the parent chain of the scanned
// product, one timeline per recipe ingredient, and the profiles of every
// actor appearing in any event.
type TraceResult struct {
	Product         models.Product                   `json:"product"`
	Timeline        []models.ProductEvent            `json:"timeline"`
	SourceTimelines map[uint64][]models.ProductEvent `json:"source_timelines,omitempty"`
	Actors          map[string]models.ActorProfile   `json:"actors"`
}

// GetProduct returns the record with its full history and ingredient
// links. Ids beyond the counter return a zero-value record, not an
// error, so callers may probe id ranges.
func (l *Ledger) GetProduct(id uint64) (models.Product, error) {
	var product models.Product
	err := l.db.
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Ingredients").
		Where("product_id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, nil
		}
		return models.Product{}, fmt.Errorf("product lookup: %w", err)
	}
	return product, nil
}

// ProductCounter returns the number of products ever issued. Ids are
// assigned from 1 and never reused, so this equals the highest id.
func (l *Ledger) ProductCounter() (uint64, error) {
	var counter uint64
	err := l.db.Model(&models.Product{}).
		Select("COALESCE(MAX(product_id), 0)").
		Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("product counter: %w", err)
	}
	return counter, nil
}

// ProductFilter narrows ListProducts for the role dashboards.
type ProductFilter struct {
	Owner       string
	Destination string
	State       *models.ProductState
}

func (l *Ledger) ListProducts(filter ProductFilter) ([]models.Product, error) {
	query := l.db.Model(&models.Product{}).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })

	if filter.Owner != "" {
		query = query.Where("current_owner = ?", NormalizeAddress(filter.Owner))
	}
	if filter.Destination != "" {
		query = query.Where("destination_address = ?", NormalizeAddress(filter.Destination))
	}
	if filter.State != nil {
		query = query.Where("current_state = ?", *filter.State)
	}

	var products []models.Product
	if err := query.Order("product_id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product listing: %w", err)
	}
	return products, nil
}

// Trace reconstructs provenance for a product. The parent chain is
// followed backward to the root harvest with a visited-set cycle guard.
// Ingredient links found on ANY product along that chain are traced the
// same way, each yielding its own timeline, and ingredient chains may
// themselves contain recipe outputs: a shipment split off a blend still
// reaches every harvest the blend was merged from.
func (l *Ledger) Trace(id uint64) (*TraceResult, error) {
	product, err := l.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if !product.Exists() {
		return nil, fmt.Errorf("product #%d: %w", id, ErrNotFound)
	}

	result := &TraceResult{
		Product: product,
		Actors:  make(map[string]models.ActorProfile),
	}

	timeline, pending, err := l.lineageTimeline(id)
	if err != nil {
		return nil, err
	}
	result.Timeline = timeline

	traced := make(map[uint64]bool)
	for len(pending) > 0 {
		ingredientID := pending[0]
		pending = pending[1:]
		if traced[ingredientID] {
			continue
		}
		traced[ingredientID] = true

		sourceTimeline, nested, err := l.lineageTimeline(ingredientID)
		if err != nil {
			return nil, err
		}
		if result.SourceTimelines == nil {
			result.SourceTimelines = make(map[uint64][]models.ProductEvent)
		}
		result.SourceTimelines[ingredientID] = sourceTimeline
		pending = append(pending, nested...)
	}

	if err := l.resolveActors(result); err != nil {
		return nil, err
	}
	return result, nil
}

// lineageTimeline merges history along the parent chain, oldest product
// first, and collects the ingredient links of every product visited so
// the caller can trace merged lineage too. Traversal always terminates:
// it stops at parent id 0 or on an already-visited id.
func (l *Ledger) lineageTimeline(startID uint64) ([]models.ProductEvent, []uint64, error) {
	var timeline []models.ProductEvent
	var ingredientIDs []uint64
	visited := make(map[uint64]bool)

	for currentID := startID; currentID > 0 && !visited[currentID]; {
		visited[currentID] = true

		product, err := l.GetProduct(currentID)
		if err != nil {
			return nil, nil, err
		}
		if !product.Exists() {
			break
		}

		timeline = append(append([]models.ProductEvent{}, product.History...), timeline...)
		for _, link := range product.Ingredients {
			ingredientIDs = append(ingredientIDs, link.IngredientID)
		}
		currentID = product.ParentProductID
	}
	return timeline, ingredientIDs, nil
}

func (l *Ledger) resolveActors(result *TraceResult) error {
	collect := func(events []models.ProductEvent) error {
		for _, event := range events {
			if event.Actor == models.ZeroAddress {
				continue
			}
			if _, seen := result.Actors[event.Actor]; seen {
				continue
			}
			profile, err := l.GetActorProfile(event.Actor)
			if err != nil {
				return err
			}
			result.Actors[event.Actor] = profile
		}
		return nil
	}

	if err := collect(result.Timeline); err != nil {
		return err
	}
	for _, timeline := range result.SourceTimelines {
		if err := collect(timeline); err != nil {
			return err
		}
	}
	return nil
}
