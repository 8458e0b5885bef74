package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/lifecycle"
	"renovaflow-backend/internal/models"
)

type BillingHandler struct {
	store  *database.Store
	engine *lifecycle.Engine
}

func NewBillingHandler(store *database.Store, engine *lifecycle.Engine) *BillingHandler {
	return &BillingHandler{store: store, engine: engine}
}

// PatchBillingItem sets the billed and/or paid flag of one billing item.
// Flags move in one direction: a false in the payload is ignored. After a
// billed set, the auto-advance check runs for the owning project.
func (h *BillingHandler) PatchBillingItem(c *gin.Context) {
	var req models.BillingItemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	var billed, paid *bool
	if req.IsBilled != nil && *req.IsBilled {
		billed = req.IsBilled
	}
	if req.IsPaid != nil && *req.IsPaid {
		paid = req.IsPaid
	}

	projectID, err := h.store.SetBillingItemFlags(c.Param("id"), billed, paid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "billing item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update billing item",
			Message: err.Error(),
		})
		return
	}

	if billed != nil {
		advanced, err := h.engine.AutoAdvanceOnFullBilling(projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to run billing status check",
				Message: err.Error(),
			})
			return
		}
		if advanced {
			log.Info().Str("project_id", projectID).Msg("all billing items billed, advanced to payment_in")
		}
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// PatchOutboundPayment marks one outbound payment as paid. As with billing
// flags, there is no API path to unset it.
func (h *BillingHandler) PatchOutboundPayment(c *gin.Context) {
	var req models.OutboundPaymentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if req.IsPaid == nil || !*req.IsPaid {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		return
	}

	if err := h.store.SetOutboundPaymentPaid(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "outbound payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update outbound payment",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
