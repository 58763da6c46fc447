package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
)

// CardClient drives the two-phase authorize/capture protocol against the
// card gateway. Structured rejections are returned as *gwtypes.GatewayError
// so callers can recover the transaction id the gateway may have created
// before failing.
type CardClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewCardClient(cfg internal.ProviderEndpoint, logger *slog.Logger) *CardClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CardClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type authorizeRequest struct {
	MerchantID   string `json:"merchant_id"`
	SubAccountID string `json:"sub_account_id,omitempty"`
	Token        string `json:"token"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (c *CardClient) AuthorizeTransaction(ctx context.Context, sub *location.Subsidiary, opt *paymentoption.PaymentOption, amountMinor int64, currency string) (*gwtypes.AuthorizeResponse, error) {
	token := ""
	if opt.GatewayToken != nil {
		token = *opt.GatewayToken
	}

	body := authorizeRequest{
		MerchantID:   sub.MerchantID,
		SubAccountID: sub.SubAccountID,
		Token:        token,
		Amount:       amountMinor,
		Currency:     currency,
	}

	var authResp gwtypes.AuthorizeResponse
	url := fmt.Sprintf("%s/v1/transactions/authorize", c.baseURL)
	if err := c.post(ctx, url, body, &authResp); err != nil {
		return nil, err
	}

	c.logger.Info("card authorization completed",
		"transaction_id", authResp.TransactionID,
		"status", authResp.Status)

	return &authResp, nil
}

type captureRequest struct {
	MerchantID string `json:"merchant_id"`
}

func (c *CardClient) CaptureTransaction(ctx context.Context, sub *location.Subsidiary, auth *gwtypes.AuthorizeResponse) (*gwtypes.CaptureResponse, error) {
	var capResp gwtypes.CaptureResponse
	url := fmt.Sprintf("%s/v1/transactions/%s/capture", c.baseURL, auth.TransactionID)
	if err := c.post(ctx, url, captureRequest{MerchantID: sub.MerchantID}, &capResp); err != nil {
		return nil, err
	}

	c.logger.Info("card capture completed",
		"transaction_id", capResp.TransactionID,
		"status", capResp.Status)

	return &capResp, nil
}

func (c *CardClient) post(ctx context.Context, url string, body interface{}, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("request creation error: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("response read error: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		var gwErr gwtypes.GatewayError
		if jsonErr := json.Unmarshal(respBody, &gwErr); jsonErr == nil && gwErr.Code != "" {
			c.logger.Error("card gateway rejected request",
				"url", url,
				"code", gwErr.Code,
				"transaction_id", gwErr.TransactionID)
			return &gwErr
		}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("card gateway returned error",
			"url", url,
			"status", resp.StatusCode,
			"response", string(respBody))
		return fmt.Errorf("card gateway error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("response unmarshal error: %w", err)
	}
	return nil
}
