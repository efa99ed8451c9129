package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payment-service/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingGateway is the outbound contract against the billing service.
// Both calls are single synchronous attempts; retry policy is left to
// the deployment.
type BillingGateway interface {
	FetchBill(ctx context.Context, billID int64) (*models.BillSnapshot, error)
	MarkPaid(ctx context.Context, billID, paymentID int64, amount decimal.Decimal) bool
}

// BillingClient communicates with the billing service via HTTP.
type BillingClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewBillingClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BillingClient {
	return &BillingClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchBill returns (nil, nil) when the billing service reports the bill
// does not exist.
func (c *BillingClient) FetchBill(ctx context.Context, billID int64) (*models.BillSnapshot, error) {
	url := fmt.Sprintf("%s/v1/bills/%d", c.baseURL, billID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billing service returned %d", resp.StatusCode)
	}

	var bill models.BillSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

type markPaidRequest struct {
	PaymentID int64           `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
}

// MarkPaid asks the billing service to mark the bill paid. Transport
// failures count as rejection; the caller compensates either way.
func (c *BillingClient) MarkPaid(ctx context.Context, billID, paymentID int64, amount decimal.Decimal) bool {
	payload := markPaidRequest{
		PaymentID: paymentID,
		Amount:    amount,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	url := fmt.Sprintf("%s/v1/bills/%d/mark-paid", c.baseURL, billID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("mark-paid request failed",
			zap.Int64("bill_id", billID),
			zap.Int64("payment_id", paymentID),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("mark-paid rejected by billing service",
			zap.Int64("bill_id", billID),
			zap.Int64("payment_id", paymentID),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	return true
}
