package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payment-service/kafka"
	"payment-service/models"
	"payment-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ChargeRequest is the client-supplied charge payload. Amount and method
// are untrusted and validated against the bill fetched from billing.
type ChargeRequest struct {
	BillID    int64           `json:"billId" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	PaymentID int64           `json:"paymentId" binding:"required"`
	Reference string          `json:"reference"`
}

// ChargeResult carries the exact bytes returned to the caller. Replays
// of a processed key must reproduce Body and StatusCode verbatim.
type ChargeResult struct {
	StatusCode int
	Body       []byte
}

type PaymentListResponse struct {
	Payments []models.Payment `json:"payments"`
	Meta     MetaData         `json:"meta"`
}

type MetaData struct {
	Page          int   `json:"page"`
	Limit         int   `json:"limit"`
	TotalPayments int64 `json:"total_payments"`
	HasMore       bool  `json:"has_more"`
}

// ChargeService coordinates the idempotency ledger, the payment store
// and the billing gateway for a single charge attempt.
type ChargeService struct {
	payments    repository.PaymentRepository
	idempotency repository.IdempotencyRepository
	billing     BillingGateway
	events      kafka.ProducerAPI
	logger      *zap.Logger
	group       singleflight.Group
}

func NewChargeService(
	payments repository.PaymentRepository,
	idempotency repository.IdempotencyRepository,
	billing BillingGateway,
	events kafka.ProducerAPI,
	logger *zap.Logger,
) *ChargeService {
	return &ChargeService{
		payments:    payments,
		idempotency: idempotency,
		billing:     billing,
		events:      events,
		logger:      logger,
	}
}

// ProcessCharge applies one logical charge exactly once. Concurrent
// calls carrying the same key are collapsed onto a single execution and
// all share its result; a key that already completed replays the stored
// response with no further side effects.
func (s *ChargeService) ProcessCharge(ctx context.Context, idempotencyKey string, req *ChargeRequest) (*ChargeResult, *ServiceError) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Idempotency-Key header required",
		}
	}

	// The side-effect sequence must run to completion even if the caller
	// disconnects: the mark-paid call cannot be cancelled or rolled back.
	ctx = context.WithoutCancel(ctx)

	v, err, _ := s.group.Do(idempotencyKey, func() (interface{}, error) {
		result, svcErr := s.processCharge(ctx, idempotencyKey, req)
		if svcErr != nil {
			return nil, svcErr
		}
		return result, nil
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to process charge"}
	}

	return v.(*ChargeResult), nil
}

func (s *ChargeService) processCharge(ctx context.Context, idempotencyKey string, req *ChargeRequest) (*ChargeResult, *ServiceError) {
	hash := requestHash(req)

	record, err := s.idempotency.Get(ctx, idempotencyKey)
	if err != nil {
		s.logger.Error("idempotency lookup failed", zap.String("key", idempotencyKey), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to check idempotency key"}
	}
	if record != nil {
		s.logger.Info("idempotent replay",
			zap.String("key", idempotencyKey),
			zap.Int("status", record.StatusCode),
		)
		return &ChargeResult{StatusCode: record.StatusCode, Body: []byte(record.ResponseBody)}, nil
	}

	bill, err := s.billing.FetchBill(ctx, req.BillID)
	if err != nil {
		s.logger.Warn("bill lookup failed", zap.Int64("bill_id", req.BillID), zap.Error(err))
		bill = nil
	}
	if bill == nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Bill does not exist"}
	}
	if bill.Status != models.BillStatusOpen {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("Bill is %s", bill.Status)}
	}
	if !bill.AmountTotal.Equal(req.Amount) {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Amount mismatch"}
	}

	// Persist before notifying billing: a crash after a successful
	// mark-paid still leaves a local row to reconcile against.
	payment := models.Payment{
		PaymentID: req.PaymentID,
		BillID:    req.BillID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    time.Now().UTC(),
		Status:    models.PaymentStatusSucceeded,
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		s.logger.Error("failed to save payment",
			zap.Int64("payment_id", req.PaymentID),
			zap.Int64("bill_id", req.BillID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save payment"}
	}

	if !s.billing.MarkPaid(ctx, req.BillID, req.PaymentID, req.Amount) {
		// Compensate locally, but leave no idempotency record: a retry
		// with the same key re-runs the full sequence as a fresh attempt.
		failed := payment.WithStatus(models.PaymentStatusFailed)
		if err := s.payments.UpdateStatus(ctx, failed.PaymentID, failed.Status); err != nil {
			s.logger.Error("failed to mark payment FAILED",
				zap.Int64("payment_id", failed.PaymentID),
				zap.Error(err),
			)
		}
		s.publishEvent(models.EventPaymentFailed, failed)
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Billing service rejected the payment"}
	}

	body, err := json.Marshal(payment)
	if err != nil {
		s.logger.Error("failed to serialize payment", zap.Int64("payment_id", payment.PaymentID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to serialize payment"}
	}

	putErr := s.idempotency.Put(ctx, &models.IdempotencyRecord{
		Key:          idempotencyKey,
		RequestHash:  hash,
		ResponseBody: string(body),
		StatusCode:   http.StatusCreated,
	})
	if putErr != nil {
		if errors.Is(putErr, repository.ErrDuplicateKey) {
			// A concurrent duplicate raced past the Get check and won the
			// unique-key insert. Return the winner's stored response.
			if winner, getErr := s.idempotency.Get(ctx, idempotencyKey); getErr == nil && winner != nil {
				return &ChargeResult{StatusCode: winner.StatusCode, Body: []byte(winner.ResponseBody)}, nil
			}
		} else {
			// The charge committed locally and remotely; losing replay
			// protection for this key is a reconciliation concern, not a
			// reason to fail the request.
			s.logger.Error("failed to store idempotency record",
				zap.String("key", idempotencyKey),
				zap.Error(putErr),
			)
		}
	}

	s.publishEvent(models.EventPaymentSucceeded, payment)
	return &ChargeResult{StatusCode: http.StatusCreated, Body: body}, nil
}

// GetPayment looks up a payment by its identifier.
func (s *ChargeService) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, *ServiceError) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Payment not found"}
		}
		s.logger.Error("failed to fetch payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch payment"}
	}
	return payment, nil
}

// ListPayments returns a page of payments, newest first.
func (s *ChargeService) ListPayments(ctx context.Context, page, limit int) (*PaymentListResponse, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	payments, total, err := s.payments.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to list payments", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch payments"}
	}

	return &PaymentListResponse{
		Payments: payments,
		Meta: MetaData{
			Page:          page,
			Limit:         limit,
			TotalPayments: total,
			HasMore:       total > int64(page*limit),
		},
	}, nil
}

func (s *ChargeService) publishEvent(eventType string, payment models.Payment) {
	if s.events == nil {
		return
	}

	event := models.PaymentEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		PaymentID: payment.PaymentID,
		BillID:    payment.BillID,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Timestamp: time.Now().UTC(),
	}

	// Best-effort: event delivery never fails the charge.
	if err := s.events.SendPaymentEvent(event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("event_type", eventType),
			zap.Int64("payment_id", payment.PaymentID),
			zap.Error(err),
		)
	}
}

// requestHash fingerprints the fields that determine charge identity.
func requestHash(req *ChargeRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", req.BillID, req.Amount.String(), req.Method)))
	return hex.EncodeToString(sum[:])
}
