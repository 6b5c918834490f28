// internal/services/product_service.go
package services

import (
	"fmt"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

// ProductService validates API input and hands the call to the ledger.
// All custody and conservation rules live in the ledger itself; this
// layer never second-guesses them.
type ProductService struct {
	chain *ledger.Ledger
}

type CreateProductRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Quantity uint64 `json:"quantity" validate:"required,min=1"`
	Unit     string `json:"unit" validate:"required,max=50"`
}

type ShipRequest struct {
	Quantity    uint64 `json:"quantity" validate:"required,min=1"`
	Destination string `json:"destination" validate:"required,wallet"`
}

type ProcessRequest struct {
	QuantityToProcess uint64 `json:"quantity_to_process" validate:"required,min=1"`
	NewName           string `json:"new_name" validate:"required,min=2,max=255"`
	NewQuantity       uint64 `json:"new_quantity" validate:"required,min=1"`
	NewUnit           string `json:"new_unit" validate:"required,max=50"`
}

type RecipeRequest struct {
	IngredientIDs  []uint64 `json:"ingredient_ids" validate:"required,min=1,dive,min=1"`
	Quantities     []uint64 `json:"quantities" validate:"required,min=1,dive,min=1"`
	OutputName     string   `json:"output_name" validate:"required,min=2,max=255"`
	OutputQuantity uint64   `json:"output_quantity" validate:"required,min=1"`
	OutputUnit     string   `json:"output_unit" validate:"required,max=50"`
}

type SellRequest struct {
	Quantity uint64 `json:"quantity" validate:"required,min=1"`
}

func NewProductService(chain *ledger.Ledger) *ProductService {
	return &ProductService{chain: chain}
}

func (s *ProductService) Create(caller string, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.chain.CreateProduct(caller, req.Name, req.Quantity, req.Unit)
}

func (s *ProductService) Ship(caller string, productID uint64, req *ShipRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.chain.SplitAndShip(caller, productID, req.Quantity, req.Destination)
}

func (s *ProductService) Receive(caller string, productID uint64) (*models.Product, error) {
	return s.chain.ReceiveProduct(caller, productID)
}

func (s *ProductService) Process(caller string, sourceID uint64, req *ProcessRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.chain.ProcessProduct(caller, sourceID, req.QuantityToProcess, req.NewName, req.NewQuantity, req.NewUnit)
}

func (s *ProductService) ProcessWithRecipe(caller string, req *RecipeRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if len(req.IngredientIDs) != len(req.Quantities) {
		return nil, fmt.Errorf("ingredient_ids and quantities must have the same length")
	}
	return s.chain.ProcessWithRecipe(caller, req.IngredientIDs, req.Quantities, req.OutputName, req.OutputQuantity, req.OutputUnit)
}

func (s *ProductService) Sell(caller string, productID uint64, req *SellRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.chain.SellProduct(caller, productID, req.Quantity)
}

func (s *ProductService) Get(id uint64) (models.Product, error) {
	return s.chain.GetProduct(id)
}

func (s *ProductService) List(filter ledger.ProductFilter) ([]models.Product, error) {
	return s.chain.ListProducts(filter)
}

func (s *ProductService) Trace(id uint64) (*ledger.TraceResult, error) {
	return s.chain.Trace(id)
}

func (s *ProductService) Counter() (uint64, error) {
	return s.chain.ProductCounter()
}
