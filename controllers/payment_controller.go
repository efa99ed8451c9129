package controllers

import (
	"context"
	"net/http"
	"strconv"

	"payment-service/models"
	"payment-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChargeProcessor is the slice of the charge service the controller needs.
type ChargeProcessor interface {
	ProcessCharge(ctx context.Context, idempotencyKey string, req *services.ChargeRequest) (*services.ChargeResult, *services.ServiceError)
	GetPayment(ctx context.Context, paymentID int64) (*models.Payment, *services.ServiceError)
	ListPayments(ctx context.Context, page, limit int) (*services.PaymentListResponse, *services.ServiceError)
}

type PaymentController struct {
	Charges ChargeProcessor
	Logger  *zap.Logger
}

func NewPaymentController(charges ChargeProcessor, logger *zap.Logger) *PaymentController {
	return &PaymentController{Charges: charges, Logger: logger}
}

// Charge handles POST /v1/payments/charge.
func (pc *PaymentController) Charge(c *gin.Context) {
	idempotencyKey := c.GetHeader("Idempotency-Key")

	var req services.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pc.respondError(c, http.StatusBadRequest, "Invalid charge request", err)
		return
	}

	result, svcErr := pc.Charges.ProcessCharge(c.Request.Context(), idempotencyKey, &req)
	if svcErr != nil {
		pc.respondError(c, svcErr.StatusCode, svcErr.Message, nil)
		return
	}

	// Stored replay bodies must round-trip byte for byte, so the raw
	// bytes are written instead of re-encoding.
	c.Data(result.StatusCode, "application/json", result.Body)
}

// GetPayment handles GET /v1/payments/:id.
func (pc *PaymentController) GetPayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		pc.respondError(c, http.StatusBadRequest, "Invalid payment id", err)
		return
	}

	payment, svcErr := pc.Charges.GetPayment(c.Request.Context(), paymentID)
	if svcErr != nil {
		pc.respondError(c, svcErr.StatusCode, svcErr.Message, nil)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// ListPayments handles GET /v1/payments with page/limit pagination.
func (pc *PaymentController) ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, svcErr := pc.Charges.ListPayments(c.Request.Context(), page, limit)
	if svcErr != nil {
		pc.respondError(c, svcErr.StatusCode, svcErr.Message, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health handles GET /healthz.
func (pc *PaymentController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
