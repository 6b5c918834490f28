// internal/handlers/farms.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/services"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

type FarmHandler struct {
	farmService *services.FarmService
}

func NewFarmHandler(farmService *services.FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

// Register is public: prospective farmers file their paperwork before
// they have an account or any on-chain presence.
func (h *FarmHandler) Register(c *gin.Context) {
	var req services.RegisterFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	farm, err := h.farmService.Register(&req)
	if err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		if strings.Contains(err.Error(), "already") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, farm)
}

func (h *FarmHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := c.Query("status")

	result, err := h.farmService.List(status, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, *result)
}

func (h *FarmHandler) Get(c *gin.Context) {
	farm, err := h.farmService.Get(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, farm)
}

func (h *FarmHandler) Approve(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ReviewFarmRequest
	c.ShouldBindJSON(&req) // note is optional; an empty body is fine

	farm, err := h.farmService.Approve(c.Param("id"), userID, req.Note)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		if strings.Contains(err.Error(), "already") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, farm)
}

func (h *FarmHandler) Decline(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ReviewFarmRequest
	c.ShouldBindJSON(&req)

	farm, err := h.farmService.Decline(c.Param("id"), userID, req.Note)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		if strings.Contains(err.Error(), "already") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, farm)
}
