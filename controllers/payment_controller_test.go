package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"payment-service/models"
	"payment-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// --- Mock Service ---

type MockChargeService struct {
	mock.Mock
}

func (m *MockChargeService) ProcessCharge(ctx context.Context, idempotencyKey string, req *services.ChargeRequest) (*services.ChargeResult, *services.ServiceError) {
	args := m.Called(ctx, idempotencyKey, req)
	var result *services.ChargeResult
	if args.Get(0) != nil {
		result = args.Get(0).(*services.ChargeResult)
	}
	var svcErr *services.ServiceError
	if args.Get(1) != nil {
		svcErr = args.Get(1).(*services.ServiceError)
	}
	return result, svcErr
}

func (m *MockChargeService) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, *services.ServiceError) {
	args := m.Called(ctx, paymentID)
	var payment *models.Payment
	if args.Get(0) != nil {
		payment = args.Get(0).(*models.Payment)
	}
	var svcErr *services.ServiceError
	if args.Get(1) != nil {
		svcErr = args.Get(1).(*services.ServiceError)
	}
	return payment, svcErr
}

func (m *MockChargeService) ListPayments(ctx context.Context, page, limit int) (*services.PaymentListResponse, *services.ServiceError) {
	args := m.Called(ctx, page, limit)
	var resp *services.PaymentListResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*services.PaymentListResponse)
	}
	var svcErr *services.ServiceError
	if args.Get(1) != nil {
		svcErr = args.Get(1).(*services.ServiceError)
	}
	return resp, svcErr
}

func newTestRouter(svc ChargeProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pc := NewPaymentController(svc, zap.NewNop())
	r.POST("/v1/payments/charge", pc.Charge)
	r.GET("/v1/payments", pc.ListPayments)
	r.GET("/v1/payments/:id", pc.GetPayment)
	r.GET("/healthz", pc.Health)
	return r
}

// --- Tests ---

func TestCharge_Created(t *testing.T) {
	mockSvc := new(MockChargeService)
	body := []byte(`{"paymentId":1001,"billId":42,"amount":"150","status":"SUCCEEDED"}`)
	mockSvc.On("ProcessCharge", mock.Anything, "k1", mock.Anything).
		Return(&services.ChargeResult{StatusCode: http.StatusCreated, Body: body}, nil).Once()

	router := newTestRouter(mockSvc)

	payload := `{"billId":42,"amount":"150.00","method":"CARD","paymentId":1001,"reference":"REF-001"}`
	req, _ := http.NewRequest(http.MethodPost, "/v1/payments/charge", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k1")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, string(body), recorder.Body.String())
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	mockSvc.AssertExpectations(t)
}

func TestCharge_ServiceError(t *testing.T) {
	mockSvc := new(MockChargeService)
	mockSvc.On("ProcessCharge", mock.Anything, "k1", mock.Anything).
		Return(nil, &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Amount mismatch"}).Once()

	router := newTestRouter(mockSvc)

	payload := `{"billId":42,"amount":"140.00","method":"CARD","paymentId":1001}`
	req, _ := http.NewRequest(http.MethodPost, "/v1/payments/charge", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k1")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Amount mismatch")
	mockSvc.AssertExpectations(t)
}

func TestCharge_InvalidJSON(t *testing.T) {
	mockSvc := new(MockChargeService)
	router := newTestRouter(mockSvc)

	req, _ := http.NewRequest(http.MethodPost, "/v1/payments/charge", bytes.NewBufferString(`{"billId":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k1")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	mockSvc.AssertNotCalled(t, "ProcessCharge")
}

func TestGetPaymentEndpoint(t *testing.T) {
	mockSvc := new(MockChargeService)
	mockSvc.On("GetPayment", mock.Anything, int64(1001)).
		Return(&models.Payment{PaymentID: 1001, BillID: 42, Status: models.PaymentStatusSucceeded}, nil).Once()
	mockSvc.On("GetPayment", mock.Anything, int64(9999)).
		Return(nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Payment not found"}).Once()

	router := newTestRouter(mockSvc)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/payments/1001", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"paymentId":1001`)

	recorder = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/v1/payments/9999", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/v1/payments/not-a-number", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	mockSvc.AssertExpectations(t)
}

func TestListPaymentsEndpoint(t *testing.T) {
	mockSvc := new(MockChargeService)
	mockSvc.On("ListPayments", mock.Anything, 2, 5).
		Return(&services.PaymentListResponse{
			Payments: []models.Payment{{PaymentID: 1001, BillID: 42}},
			Meta:     services.MetaData{Page: 2, Limit: 5, TotalPayments: 6, HasMore: false},
		}, nil).Once()

	router := newTestRouter(mockSvc)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/payments?page=2&limit=5", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total_payments":6`)
	mockSvc.AssertExpectations(t)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(new(MockChargeService))

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ok")
}
