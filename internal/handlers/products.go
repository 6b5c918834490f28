// internal/handlers/products.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/services"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// callerWallet pulls the wallet the JWT was issued for. Every ledger
// mutation authenticates by wallet, so an account without one cannot
// touch custody.
func callerWallet(c *gin.Context) (string, bool) {
	wallet, ok := utils.GetWalletFromContext(c)
	if !ok {
		utils.ForbiddenResponse(c, "Account has no wallet address")
	}
	return wallet, ok
}

func productID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid product id", nil)
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) Create(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.productService.Create(wallet, &req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

func (h *ProductHandler) Ship(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}

	var req services.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	shipment, err := h.productService.Ship(wallet, id, &req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, shipment)
}

func (h *ProductHandler) Receive(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.productService.Receive(wallet, id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) Process(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}

	var req services.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	output, err := h.productService.Process(wallet, id, &req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, output)
}

func (h *ProductHandler) ProcessWithRecipe(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req services.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	output, err := h.productService.ProcessWithRecipe(wallet, &req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, output)
}

func (h *ProductHandler) Sell(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}

	var req services.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.productService.Sell(wallet, id, &req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// List serves the role dashboards. With mine=true it shows the caller's
// holdings; with incoming=true, shipments addressed to the caller.
func (h *ProductHandler) List(c *gin.Context) {
	filter := ledger.ProductFilter{}

	if c.Query("mine") == "true" {
		wallet, ok := callerWallet(c)
		if !ok {
			return
		}
		filter.Owner = wallet
	} else if owner := c.Query("owner"); owner != "" {
		filter.Owner = owner
	}

	if c.Query("incoming") == "true" {
		wallet, ok := callerWallet(c)
		if !ok {
			return
		}
		filter.Destination = wallet
		state := models.StateInTransit
		filter.State = &state
	} else if stateQuery := c.Query("state"); stateQuery != "" {
		value, err := strconv.ParseUint(stateQuery, 10, 8)
		if err != nil || value > uint64(models.StateSold) {
			utils.BadRequestResponse(c, "Invalid state", nil)
			return
		}
		state := models.ProductState(value)
		filter.State = &state
	}

	products, err := h.productService.List(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, products)
}

// Get mirrors the ledger's probing semantics: unknown ids return a
// zero-value record with product_id 0 rather than a 404.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.productService.Get(id)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) Trace(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	trace, err := h.productService.Trace(id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, trace)
}

func (h *ProductHandler) Counter(c *gin.Context) {
	counter, err := h.productService.Counter()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"counter": counter})
}
