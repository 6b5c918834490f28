// internal/handlers/actors.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/services"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

type ActorHandler struct {
	actorService *services.ActorService
}

func NewActorHandler(actorService *services.ActorService) *ActorHandler {
	return &ActorHandler{actorService: actorService}
}

func (h *ActorHandler) ListReceivers(c *gin.Context) {
	entries, err := h.actorService.ListReceivers(c.Query("role"), c.Query("search"))
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, entries)
}

// Profile is public so scanned product histories can resolve wallet
// addresses to display names without authentication.
func (h *ActorHandler) Profile(c *gin.Context) {
	profile, err := h.actorService.Profile(c.Param("wallet"))
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, profile)
}
